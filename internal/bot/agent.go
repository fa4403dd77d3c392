package bot

import (
	"roevhul/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Play asks the agent to calculate its move. A failing strategy yields a pass.
func (a *Agent) Play(s Situation) (domain.Move, error) {
	if len(s.Hand) == 0 {
		return domain.Pass{}, nil
	}
	move, err := a.Strategy.CalculateMove(s)
	if err != nil {
		return domain.Pass{}, err
	}
	return move, nil
}

// PlayTokens is Play encoded as move notation, ready to be submitted.
func (a *Agent) PlayTokens(s Situation) ([]string, error) {
	move, err := a.Play(s)
	return domain.FormatMove(move), err
}
