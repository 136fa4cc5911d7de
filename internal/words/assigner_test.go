package words

import (
	"sync"
	"testing"

	"github.com/KirkDiggler/blacksheep/internal/models"
	"github.com/stretchr/testify/suite"
)

type AssignerTestSuite struct {
	suite.Suite
	assigner *RandomAssigner
}

func (s *AssignerTestSuite) SetupTest() {
	s.assigner = New(&Config{Seed: 42})
}

func TestAssignerTestSuite(t *testing.T) {
	suite.Run(t, new(AssignerTestSuite))
}

func (s *AssignerTestSuite) TestDefaultPoolHasUniqueCategories() {
	s.GreaterOrEqual(len(DefaultPairs), 30)

	seen := make(map[string]bool)
	for _, p := range DefaultPairs {
		s.False(seen[p.Category], "duplicate category %q", p.Category)
		seen[p.Category] = true
		s.NotEmpty(p.Main)
		s.NotEmpty(p.Imposter)
		s.NotEqual(p.Main, p.Imposter)
	}
}

func (s *AssignerTestSuite) TestAssignNoCandidates() {
	out, err := s.assigner.Assign(&AssignInput{})
	s.ErrorIs(err, ErrNoCandidates)
	s.Nil(out)

	out, err = s.assigner.Assign(nil)
	s.ErrorIs(err, ErrNoCandidates)
	s.Nil(out)
}

func (s *AssignerTestSuite) TestAssignPicksCandidateAndUnusedCategory() {
	candidates := []string{"a", "b", "c", "d"}
	used := []string{"fruit", "drinks"}

	for range 100 {
		out, err := s.assigner.Assign(&AssignInput{CandidateIDs: candidates, UsedCategories: used})
		s.Require().NoError(err)

		s.Contains(candidates, out.ImposterID)
		s.NotContains(used, out.Pair.Category)
		s.Equal(append(append([]string{}, used...), out.Pair.Category), out.UsedCategories)
	}
}

func (s *AssignerTestSuite) TestAssignDoesNotMutateInput() {
	used := []string{"fruit"}
	input := &AssignInput{CandidateIDs: []string{"a"}, UsedCategories: used}

	_, err := s.assigner.Assign(input)
	s.Require().NoError(err)
	s.Equal([]string{"fruit"}, input.UsedCategories)
}

func (s *AssignerTestSuite) TestAssignResetsWhenAllCategoriesUsed() {
	pairs := []models.WordPair{
		{Category: "x", Main: "X1", Imposter: "X2"},
		{Category: "y", Main: "Y1", Imposter: "Y2"},
	}
	assigner := New(&Config{Seed: 7, Pairs: pairs})

	out, err := assigner.Assign(&AssignInput{CandidateIDs: []string{"a"}, UsedCategories: []string{"x", "y"}})
	s.Require().NoError(err)
	s.Len(out.UsedCategories, 1)
	s.Equal(out.Pair.Category, out.UsedCategories[0])
}

func (s *AssignerTestSuite) TestAssignCyclesThroughEveryCategory() {
	var used []string
	seen := make(map[string]bool)

	for range len(DefaultPairs) {
		out, err := s.assigner.Assign(&AssignInput{CandidateIDs: []string{"a", "b"}, UsedCategories: used})
		s.Require().NoError(err)
		s.False(seen[out.Pair.Category], "category %q repeated before the pool was exhausted", out.Pair.Category)
		seen[out.Pair.Category] = true
		used = out.UsedCategories
	}
	s.Len(seen, len(DefaultPairs))
}

func (s *AssignerTestSuite) TestImposterChoiceCoversAllCandidates() {
	candidates := []string{"a", "b", "c", "d", "e"}
	picked := make(map[string]int)

	for range 500 {
		out, err := s.assigner.Assign(&AssignInput{CandidateIDs: candidates})
		s.Require().NoError(err)
		picked[out.ImposterID]++
	}
	for _, id := range candidates {
		s.Greater(picked[id], 0, "candidate %s never chosen", id)
	}
}

func (s *AssignerTestSuite) TestSameSeedSameChoices() {
	a := New(&Config{Seed: 99})
	b := New(&Config{Seed: 99})
	input := &AssignInput{CandidateIDs: []string{"a", "b", "c", "d"}}

	for range 10 {
		outA, err := a.Assign(input)
		s.Require().NoError(err)
		outB, err := b.Assign(input)
		s.Require().NoError(err)
		s.Equal(outA, outB)
	}
}

func (s *AssignerTestSuite) TestConcurrentAssign() {
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.assigner.Assign(&AssignInput{CandidateIDs: []string{"a", "b", "c"}})
			s.NoError(err)
		}()
	}
	wg.Wait()
}

func (s *AssignerTestSuite) TestApply() {
	players := []*models.Player{{ID: "a"}, {ID: "b", IsImposter: true}, {ID: "c"}}
	Apply(players, &AssignOutput{
		ImposterID: "c",
		Pair:       models.WordPair{Category: "pets", Main: "Cat", Imposter: "Dog"},
	})

	s.Equal("Cat", players[0].Word)
	s.False(players[0].IsImposter)
	s.Equal("Cat", players[1].Word)
	s.False(players[1].IsImposter)
	s.Equal("Dog", players[2].Word)
	s.True(players[2].IsImposter)
}
