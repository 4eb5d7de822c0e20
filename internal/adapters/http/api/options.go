package api

import "github.com/okian/replaystats/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for handler failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxLimit caps the limit query parameter of list endpoints.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithSubmitRate limits replay submissions per client IP per minute.
// Zero disables the limit.
func WithSubmitRate(perMinute int) Option {
	return func(s *Server) {
		if perMinute >= 0 {
			s.submitRate = perMinute
		}
	}
}

// WithMaxReplayBytes bounds the size of an uploaded capture.
func WithMaxReplayBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxReplayBytes = n
		}
	}
}
