package dungeon

import (
	"errors"
	"testing"

	"github.com/lawnchairsociety/dungeonforge/internal/mission"
)

func TestRetrySucceeds(t *testing.T) {
	calls := 0
	result, attempts, err := retry(5, func(attempt int) (outcome, error) {
		calls++
		if attempt < 3 {
			return retryable, errCollision
		}
		return success, nil
	})

	if result != success {
		t.Errorf("result = %v, want success", result)
	}
	if attempts != 3 || calls != 3 {
		t.Errorf("attempts = %d, calls = %d, want 3", attempts, calls)
	}
	if err != nil {
		t.Errorf("err = %v, want nil on success", err)
	}
}

func TestRetryBounded(t *testing.T) {
	calls := 0
	result, attempts, err := retry(4, func(int) (outcome, error) {
		calls++
		return retryable, errCollision
	})

	if result != exhausted {
		t.Errorf("result = %v, want exhausted", result)
	}
	if attempts != 4 || calls != 4 {
		t.Errorf("attempts = %d, calls = %d, want 4", attempts, calls)
	}
	if !errors.Is(err, errCollision) {
		t.Errorf("err = %v, want last attempt's error", err)
	}
}

func TestRetryStopsOnExhausted(t *testing.T) {
	calls := 0
	result, attempts, err := retry(10, func(attempt int) (outcome, error) {
		calls++
		if attempt == 2 {
			return exhausted, errNoBlueprint
		}
		return retryable, errCollision
	})

	if result != exhausted || attempts != 2 || calls != 2 {
		t.Errorf("retry = %v after %d attempts (%d calls), want exhausted after 2", result, attempts, calls)
	}
	if !errors.Is(err, errNoBlueprint) {
		t.Errorf("err = %v, want errNoBlueprint", err)
	}
}

func TestRetryZeroLimit(t *testing.T) {
	result, attempts, _ := retry(0, func(int) (outcome, error) {
		t.Fatal("fn must not run with a zero limit")
		return success, nil
	})
	if result != exhausted || attempts != 0 {
		t.Errorf("retry(0) = %v, %d; want exhausted, 0", result, attempts)
	}
}

func TestPlacementErrorUnwrap(t *testing.T) {
	var err error = &PlacementError{Node: 4, Symbol: mission.Boss, Attempts: 20, Last: errCollision}

	if !errors.Is(err, ErrPlacementExhausted) {
		t.Error("PlacementError should match ErrPlacementExhausted")
	}
	if !errors.Is(err, errCollision) {
		t.Error("PlacementError should expose the last failure")
	}

	var pe *PlacementError
	if !errors.As(err, &pe) || pe.Symbol != mission.Boss {
		t.Errorf("errors.As = %v, want boss placement error", pe)
	}
}
