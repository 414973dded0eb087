package extensibility

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/comalice/fsmx"
)

var (
	// ErrUnknownAction is returned when an action name is neither registered nor a built-in form.
	ErrUnknownAction = errors.New("action not registered")
	// ErrDuplicateName is returned when a name is registered twice.
	ErrDuplicateName = errors.New("name already registered")
)

// Catalog maps names used in definition documents to callbacks. It is safe for
// concurrent use; resolved callbacks capture the catalog's blackboard.
type Catalog struct {
	mu         sync.RWMutex
	board      *fsmx.Blackboard
	actions    map[string]fsmx.Action
	conditions map[string]fsmx.Condition
	log        zerolog.Logger
}

// NewCatalog returns an empty catalog over board. A nil board gets a fresh one.
func NewCatalog(board *fsmx.Blackboard, log zerolog.Logger) *Catalog {
	if board == nil {
		board = fsmx.NewBlackboard()
	}
	return &Catalog{
		board:      board,
		actions:    make(map[string]fsmx.Action),
		conditions: make(map[string]fsmx.Condition),
		log:        log,
	}
}

// Board returns the blackboard built-in actions and expressions operate on.
func (c *Catalog) Board() *fsmx.Blackboard { return c.board }

// RegisterAction names an action.
func (c *Catalog) RegisterAction(name string, a fsmx.Action) error {
	if name == "" || a == nil {
		return fmt.Errorf("register action %q: name and action are required", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.actions[name]; exists {
		return fmt.Errorf("action %q: %w", name, ErrDuplicateName)
	}
	c.actions[name] = a
	return nil
}

// RegisterCondition names a condition.
func (c *Catalog) RegisterCondition(name string, cond fsmx.Condition) error {
	if name == "" || cond == nil {
		return fmt.Errorf("register condition %q: name and condition are required", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.conditions[name]; exists {
		return fmt.Errorf("condition %q: %w", name, ErrDuplicateName)
	}
	c.conditions[name] = cond
	return nil
}

// Action resolves a registered name or a built-in form. The result logs each run
// at trace level.
func (c *Catalog) Action(name string) (fsmx.Action, error) {
	c.mu.RLock()
	a, ok := c.actions[name]
	c.mu.RUnlock()
	if !ok {
		var err error
		if a, err = c.builtin(name); err != nil {
			return nil, err
		}
	}
	return LoggingAction(c.log, name, a), nil
}

// Condition resolves a registered name or parses an expression. Empty text
// resolves to nil, which the engine treats as always true.
func (c *Catalog) Condition(text string) (fsmx.Condition, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	c.mu.RLock()
	cond, ok := c.conditions[text]
	c.mu.RUnlock()
	if ok {
		return cond, nil
	}
	expr, err := ParseExpression(text)
	if err != nil {
		return nil, err
	}
	return expr.Condition(c.board), nil
}

func (c *Catalog) builtin(text string) (fsmx.Action, error) {
	verb, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	args := strings.Fields(rest)
	switch verb {
	case "set":
		if len(args) != 2 {
			return nil, fmt.Errorf("action %q: set takes a key and a value", text)
		}
		key, val := args[0], parseLiteral(args[1])
		return func() { c.board.Set(key, val) }, nil
	case "add":
		if len(args) != 2 {
			return nil, fmt.Errorf("action %q: add takes a key and a delta", text)
		}
		delta, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return nil, fmt.Errorf("action %q: bad delta: %w", text, err)
		}
		key := args[0]
		return func() { c.board.Add(key, delta) }, nil
	case "log":
		msg := strings.TrimSpace(rest)
		return func() { c.log.Info().Msg(msg) }, nil
	}
	return nil, fmt.Errorf("%q: %w", text, ErrUnknownAction)
}

// LoggingAction wraps a with trace-level timing output.
func LoggingAction(log zerolog.Logger, name string, a fsmx.Action) fsmx.Action {
	return func() {
		start := time.Now()
		a()
		log.Trace().Str("action", name).Dur("took", time.Since(start)).Msg("action ran")
	}
}

// Sequence runs actions in order. Nil entries are skipped; an empty sequence is nil.
func Sequence(actions ...fsmx.Action) fsmx.Action {
	var live []fsmx.Action
	for _, a := range actions {
		if a != nil {
			live = append(live, a)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func() {
		for _, a := range live {
			a()
		}
	}
}
