package access

import (
	"fmt"
	"sync"

	"github.com/doorlab/roomkey-bookings/internal/domain"
)

// IndicatorState is the manual override for a room's indicator LEDs.
// The controller drives all three channels together.
type IndicatorState struct {
	Led2 bool `json:"led2"`
	Led3 bool `json:"led3"`
	Led4 bool `json:"led4"`
}

func (s IndicatorState) anyOn() bool {
	return s.Led2 || s.Led3 || s.Led4
}

// IndicatorRegistry holds per-room indicator overrides. The state lives
// for the process lifetime only: it is reset on restart and is not part
// of the booking store's transactional boundary.
type IndicatorRegistry struct {
	mu     sync.RWMutex
	states map[int64]IndicatorState
}

func NewIndicatorRegistry() *IndicatorRegistry {
	return &IndicatorRegistry{states: make(map[int64]IndicatorState)}
}

func (r *IndicatorRegistry) Get(roomID int64) IndicatorState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.states[roomID]
}

// Apply applies an "on", "off" or "toggle" action to every channel of
// the room's indicator and returns the resulting state.
func (r *IndicatorRegistry) Apply(roomID int64, action string) (IndicatorState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.states[roomID]
	switch action {
	case "on":
		state = IndicatorState{Led2: true, Led3: true, Led4: true}
	case "off":
		state = IndicatorState{}
	case "toggle":
		on := !state.anyOn()
		state = IndicatorState{Led2: on, Led3: on, Led4: on}
	default:
		return state, fmt.Errorf("%w: action must be on, off or toggle", domain.ErrValidation)
	}

	r.states[roomID] = state
	return state, nil
}
