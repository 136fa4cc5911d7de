package words

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_assigner.go github.com/KirkDiggler/blacksheep/internal/words Assigner

// ErrNoCandidates is returned when there is nobody to assign words to
var ErrNoCandidates = errors.New("no candidates for word assignment")

// ErrEmptyPool is returned when the word pool has no pairs
var ErrEmptyPool = errors.New("word pool is empty")

// Assigner picks the imposter and the word pair for a round
type Assigner interface {
	Assign(input *AssignInput) (*AssignOutput, error)
}

// AssignInput contains the players to choose from and the categories already played
type AssignInput struct {
	CandidateIDs   []string
	UsedCategories []string
}

// AssignOutput contains the chosen imposter, the pair and the updated used set
type AssignOutput struct {
	ImposterID     string
	Pair           models.WordPair
	UsedCategories []string
}

// Config for the random assigner
type Config struct {
	// Optional seed for testing
	Seed int64

	// Pairs overrides DefaultPairs
	Pairs []models.WordPair
}

// RandomAssigner chooses uniformly at random
type RandomAssigner struct {
	mu     sync.Mutex
	random *rand.Rand
	pairs  []models.WordPair
}

// New creates a random assigner
func New(cfg *Config) *RandomAssigner {
	var seed int64
	pairs := DefaultPairs
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}
	if cfg != nil && len(cfg.Pairs) > 0 {
		pairs = cfg.Pairs
	}

	return &RandomAssigner{
		random: rand.New(rand.NewSource(seed)),
		pairs:  pairs,
	}
}

// Assign picks an imposter among the candidates and a pair whose category
// has not been used. Once every category has been used the used set starts
// over.
func (a *RandomAssigner) Assign(input *AssignInput) (*AssignOutput, error) {
	if input == nil || len(input.CandidateIDs) == 0 {
		return nil, ErrNoCandidates
	}
	if len(a.pairs) == 0 {
		return nil, ErrEmptyPool
	}

	used := make(map[string]bool, len(input.UsedCategories))
	for _, c := range input.UsedCategories {
		used[c] = true
	}

	available := make([]models.WordPair, 0, len(a.pairs))
	for _, p := range a.pairs {
		if !used[p.Category] {
			available = append(available, p)
		}
	}

	usedCategories := append([]string(nil), input.UsedCategories...)
	if len(available) == 0 {
		available = a.pairs
		usedCategories = nil
	}

	a.mu.Lock()
	imposterID := input.CandidateIDs[a.random.Intn(len(input.CandidateIDs))]
	pair := available[a.random.Intn(len(available))]
	a.mu.Unlock()

	return &AssignOutput{
		ImposterID:     imposterID,
		Pair:           pair,
		UsedCategories: append(usedCategories, pair.Category),
	}, nil
}

// Apply gives every player in players the word for their role.
// The imposter is marked and receives the imposter word.
func Apply(players []*models.Player, out *AssignOutput) {
	for _, p := range players {
		if p.ID == out.ImposterID {
			p.IsImposter = true
			p.Word = out.Pair.Imposter
			continue
		}
		p.IsImposter = false
		p.Word = out.Pair.Main
	}
}
