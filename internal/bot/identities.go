package bot

import (
	"errors"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// IDPrefix marks user ids that belong to bots.
const IDPrefix = "bot:"

var ErrNoNamesLeft = errors.New("no bot names left")

// Names is the pool of display names handed to bots.
var Names = [...]string{
	"Amy Stake",
	"Barb Dwyer",
	"Chris P Bacon",
	"Chris P Baker",
	"Doug Graves",
	"Ella Vader",
	"Emma Roids",
	"Jed I Knight",
	"Lee King",
	"Ophelia Pane",
	"Paige Turner",
	"Philipa Bucket",
	"Rhoda Wolff",
	"Robyn Banks",
	"Sue Flay",
	"Sum Ting Wong",
	"Teresa Brown",
	"Teresa Crowd",
	"Teresa Green",
	"Tim Burr",
	"Toby Lerone",
	"Ty Prater",
	"Zoltan Pepper",
}

type BotIdentity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Level       string `json:"level"`
}

// IsBot reports whether the given user ID belongs to a bot.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, IDPrefix)
}

// NamePool hands out display names without repeats within one match.
type NamePool struct {
	mu   sync.Mutex
	rng  *rand.Rand
	used map[string]bool
}

// NewNamePool returns a pool drawing with rng.
func NewNamePool(rng *rand.Rand) *NamePool {
	return &NamePool{rng: rng, used: make(map[string]bool)}
}

// Reserve marks a name as taken, e.g. by a human player.
func (p *NamePool) Reserve(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.used[name] = true
}

// NewIdentity returns a fresh bot identity with an unused display name.
func (p *NamePool) NewIdentity(level BotLevel) (BotIdentity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	available := make([]string, 0, len(Names))
	for _, n := range Names {
		if !p.used[n] {
			available = append(available, n)
		}
	}
	if len(available) == 0 {
		return BotIdentity{}, ErrNoNamesLeft
	}

	name := available[p.rng.Intn(len(available))]
	p.used[name] = true
	return BotIdentity{
		UserID:      IDPrefix + uuid.NewString(),
		DisplayName: name,
		Level:       level.String(),
	}, nil
}

// NewAgent builds an agent for identity using the given strategy.
func NewAgent(identity BotIdentity, strategy Brain) *Agent {
	return &Agent{ID: identity.UserID, Name: identity.DisplayName, Strategy: strategy}
}
