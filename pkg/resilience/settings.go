package resilience

import "time"

const (
	defaultInterval         = time.Minute
	defaultOpenTimeout      = 30 * time.Second
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 1
)

// withDefaults fills unset or non-positive knobs
func (s Settings) withDefaults() Settings {
	if s.Name == "" {
		s.Name = "breaker"
	}
	if s.Interval <= 0 {
		s.Interval = defaultInterval
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultOpenTimeout
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = defaultFailureThreshold
	}
	if s.SuccessThreshold == 0 {
		s.SuccessThreshold = defaultSuccessThreshold
	}
	return s
}

// SecondsSettings builds Settings from the integer knobs env config carries
func SecondsSettings(name string, intervalSeconds, timeoutSeconds, failureThreshold, successThreshold int) Settings {
	return Settings{
		Name:             name,
		Interval:         time.Duration(intervalSeconds) * time.Second,
		Timeout:          time.Duration(timeoutSeconds) * time.Second,
		FailureThreshold: uint32(max(failureThreshold, 0)),
		SuccessThreshold: uint32(max(successThreshold, 0)),
	}.withDefaults()
}
