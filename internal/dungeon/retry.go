package dungeon

// outcome is the result of one bounded attempt
type outcome int

const (
	success   outcome = iota
	retryable         // Try again with fresh random choices
	exhausted         // Stop retrying at this level
)

func (o outcome) String() string {
	switch o {
	case success:
		return "success"
	case retryable:
		return "retry"
	case exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// retry runs fn until it succeeds, gives up, or limit attempts have been
// made. It returns success or exhausted, the number of attempts used and the
// last error fn reported.
func retry(limit int, fn func(attempt int) (outcome, error)) (outcome, int, error) {
	var last error
	for attempt := 1; attempt <= limit; attempt++ {
		result, err := fn(attempt)
		if err != nil {
			last = err
		}
		switch result {
		case success:
			return success, attempt, nil
		case exhausted:
			return exhausted, attempt, last
		}
	}
	return exhausted, limit, last
}
