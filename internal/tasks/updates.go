package tasks

import (
	"fmt"
	"time"
)

// ProgressUpdate represents a progress event during a fetch.
//
// Used to narrate strategy attempts to the CLI layer, which renders them on stderr.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data (strategy name, error, counts)
}

// Operation phase enumeration
type Phase int

const (
	ResolveInput Phase = iota
	TryStrategy
	RetryStrategy
	StrategyFailed
	Complete
	StreamAudio
)

func (p Phase) String() string {
	switch p {
	case ResolveInput:
		return "resolve_input"
	case TryStrategy:
		return "try_strategy"
	case RetryStrategy:
		return "retry_strategy"
	case StrategyFailed:
		return "strategy_failed"
	case Complete:
		return "complete"
	case StreamAudio:
		return "stream_audio"
	default:
		return ""
	}
}

// StrategyData accompanies strategy phases.
type StrategyData struct {
	Strategy string
	Attempt  int
	Err      error
	Next     time.Duration
}

// CompleteData accompanies the final update.
type CompleteData struct {
	Strategy string
	Count    int
}

func resolveUpdate(input, resolved string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveInput,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolved %s to %s", input, resolved),
		Data:    resolved,
	}
}

func tryStrategyUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TryStrategy,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Trying strategy %s...", name),
		Data:    StrategyData{Strategy: name, Attempt: 1},
	}
}

func retryStrategyUpdate(step, total int, name string, attempt int, err error, next time.Duration) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RetryStrategy,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Strategy %s attempt %d failed, retrying in %s", name, attempt, next),
		Data:    StrategyData{Strategy: name, Attempt: attempt, Err: err, Next: next},
	}
}

func strategyFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StrategyFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Strategy %s failed", name),
		Data:    StrategyData{Strategy: name, Err: err},
	}
}

func completeUpdate(name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Strategy %s returned %d tracks", name, count),
		Data:    CompleteData{Strategy: name, Count: count},
	}
}

func streamUpdate(videoID, preset string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StreamAudio,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Streaming %s as %s", videoID, preset),
		Data:    preset,
	}
}
