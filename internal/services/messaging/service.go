package messaging

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/blacksheep/internal/lifecycle"
	"github.com/KirkDiggler/blacksheep/internal/models"
)

// service implements the Service interface
type service struct {
	mu sync.Mutex

	// Random number generator for selecting random messages
	rand *rand.Rand
}

// NewService creates a new messaging service
func NewService(config *ServiceConfig) (Service, error) {
	seed := time.Now().UnixNano()
	if config != nil && config.Seed != 0 {
		seed = config.Seed
	}

	return &service{
		rand: rand.New(rand.NewSource(seed)),
	}, nil
}

func (s *service) pick(messages []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return messages[s.rand.Intn(len(messages))]
}

// GetJoinMessage returns a message for when a player joins a room
func (s *service) GetJoinMessage(ctx context.Context, input *GetJoinMessageInput) (*GetJoinMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var messages []string
	if input.IsHost {
		messages = []string{
			fmt.Sprintf("%s opened the room. Share the code and round up some suspects!", input.PlayerName),
			fmt.Sprintf("%s is hosting. Nobody trusts the host, just so you know.", input.PlayerName),
			fmt.Sprintf("Room is open! %s is in charge until someone votes them out.", input.PlayerName),
		}
	} else {
		messages = []string{
			fmt.Sprintf("%s joined. Totally not the imposter. Probably.", input.PlayerName),
			fmt.Sprintf("A wild %s appeared!", input.PlayerName),
			fmt.Sprintf("%s walked in looking very innocent.", input.PlayerName),
			fmt.Sprintf("Welcome %s! Keep your word to yourself.", input.PlayerName),
			fmt.Sprintf("%s is here. Everyone act natural.", input.PlayerName),
		}
	}

	return &GetJoinMessageOutput{
		Message: s.pick(messages),
	}, nil
}

// GetStateMessage returns a headline for the room's current state
func (s *service) GetStateMessage(ctx context.Context, input *GetStateMessageInput) (*GetStateMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var message string
	switch input.State {
	case models.GameStateWaiting:
		if missing := input.MinPlayers - input.ActivePlayers; missing > 0 {
			message = fmt.Sprintf("Waiting for %d more player(s) to start.", missing)
		} else {
			message = "Everyone's here. The host can start the game."
		}
	case models.GameStateClue:
		message = fmt.Sprintf("Round %d: give a one line clue about your word.", input.Round)
	case models.GameStateVoting:
		message = fmt.Sprintf("Round %d: vote for who you think has the other word.", input.Round)
	case models.GameStateResults:
		message = fmt.Sprintf("Round %d: the votes are in...", input.Round)
	case models.GameStateFinished:
		message = "Game over!"
	default:
		return nil, fmt.Errorf("unknown state %q", input.State)
	}

	return &GetStateMessageOutput{
		Message: message,
	}, nil
}

// GetOutcomeMessage describes how a vote or a game ended
func (s *service) GetOutcomeMessage(ctx context.Context, input *GetOutcomeMessageInput) (*GetOutcomeMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if input.Outcome == nil && !input.Finished {
		return nil, errors.New("outcome cannot be nil before the game ends")
	}

	out := &GetOutcomeMessageOutput{}

	switch {
	case input.Outcome == nil:
		out.Title = "Game over"
	case len(input.Outcome.Leaders) == 0:
		out.Title = "No votes counted"
		out.Message = "Nobody is left with a vote against them. On to the next round."
	case input.Outcome.IsTie:
		out.Title = "It's a tie!"
		out.Message = s.pick([]string{
			"Nobody gets voted out this round. Keep talking.",
			"The vote is split. Another round of clues it is.",
			"Indecision wins this round. Try again!",
		})
	case input.Outcome.EliminatedWasImposter:
		out.Title = fmt.Sprintf("%s was the imposter!", input.EliminatedName)
		out.Message = s.pick([]string{
			"Caught red handed.",
			"The act is over. Nice work, detectives.",
			"Busted!",
		})
	default:
		out.Title = fmt.Sprintf("%s was not the imposter", input.EliminatedName)
		out.Message = s.pick([]string{
			"Oops. The imposter is still among you.",
			"An innocent player goes home. Someone is smiling.",
			"Wrong call. Keep looking.",
		})
	}

	if !input.Finished {
		return out, nil
	}

	var b strings.Builder
	switch input.Winner {
	case models.WinnerCivilians:
		b.WriteString("Civilians win! ")
	case models.WinnerImposters:
		b.WriteString("The imposter wins! ")
	default:
		b.WriteString("Nobody wins. ")
	}
	b.WriteString(input.Reason)
	if input.ImposterName != "" {
		fmt.Fprintf(&b, " %s was the imposter.", input.ImposterName)
	}
	if input.MainWord != "" && input.ImposterWord != "" {
		fmt.Fprintf(&b, " The word was %q, the imposter had %q.", input.MainWord, input.ImposterWord)
	}
	out.Message = strings.TrimSpace(out.Message + " " + b.String())

	return out, nil
}

// GetRejectionMessage explains why an action was ignored
func (s *service) GetRejectionMessage(ctx context.Context, input *GetRejectionMessageInput) (*GetRejectionMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	var message string
	switch input.Rule {
	case lifecycle.ErrNotHost:
		message = "Only the host can do that."
	case lifecycle.ErrWrongState:
		message = "That can't be done at this point in the game."
	case lifecycle.ErrNotEnoughPlayers:
		message = "There aren't enough players to start yet."
	case lifecycle.ErrRoomFull:
		message = "This room is full."
	case lifecycle.ErrNameTaken:
		message = "Someone in this room already has that name."
	case lifecycle.ErrAlreadyGaveClue:
		message = "You already gave a clue this round."
	case lifecycle.ErrAlreadyVoted:
		message = "You already voted this round."
	case lifecycle.ErrPlayerInactive:
		message = "You're out of the game. Enjoy the show!"
	case lifecycle.ErrInvalidVoteTarget:
		message = "You can't vote for that player."
	case lifecycle.ErrStaleRound:
		message = "That round is already over."
	default:
		message = input.Rule.Error()
		if message != "" {
			message = strings.ToUpper(message[:1]) + message[1:] + "."
		}
	}

	return &GetRejectionMessageOutput{
		Message: message,
	}, nil
}

// GetRetryMessage asks the player to try again after a storage failure
func (s *service) GetRetryMessage(ctx context.Context, input *GetRetryMessageInput) (*GetRetryMessageOutput, error) {
	action := "do that"
	if input != nil && input.Action != "" {
		action = input.Action
	}

	message := s.pick([]string{
		fmt.Sprintf("We couldn't %s. Please try again.", action),
		fmt.Sprintf("Something went wrong while trying to %s. Give it another go.", action),
	})

	return &GetRetryMessageOutput{
		Message: message,
	}, nil
}
