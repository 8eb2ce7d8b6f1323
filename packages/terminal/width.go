package terminal

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultWidth is used when no other width source succeeds.
	DefaultWidth = 80

	// LargeWidth is a common wide-terminal width.
	LargeWidth = 120

	// ColumnsEnv is the environment variable consulted for the width.
	ColumnsEnv = "COLUMNS"

	// QueryTimeout bounds the external terminal-size query.
	QueryTimeout = 2 * time.Second
)

// QueryFunc queries an external source for the terminal size and returns its
// raw output.
type QueryFunc func(ctx context.Context) (string, error)

// TputColumns asks tput for the number of columns.
func TputColumns(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", "tput cols")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WidthResolver determines the active terminal width from, in order: an
// explicitly configured width, the COLUMNS environment variable, an external
// query, and finally DefaultWidth. It never fails and never returns a
// non-positive width.
type WidthResolver struct {
	configured int
	lookupEnv  func(string) (string, bool)
	query      QueryFunc
	logger     *zap.Logger

	queryOnce  sync.Once
	queryWidth int
}

// WidthOption configures a WidthResolver.
type WidthOption func(*WidthResolver)

// WithConfiguredWidth sets the explicit width. Non-positive values are ignored.
func WithConfiguredWidth(width int) WidthOption {
	return func(r *WidthResolver) {
		r.configured = width
	}
}

// WithEnvLookup replaces os.LookupEnv.
func WithEnvLookup(lookup func(string) (string, bool)) WidthOption {
	return func(r *WidthResolver) {
		r.lookupEnv = lookup
	}
}

// WithQuery replaces the external size query. A nil query disables the step.
func WithQuery(query QueryFunc) WidthOption {
	return func(r *WidthResolver) {
		r.query = query
	}
}

// WithLogger sets the logger used for query warnings.
func WithLogger(logger *zap.Logger) WidthOption {
	return func(r *WidthResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewWidthResolver creates a resolver backed by the process environment and
// tput unless overridden.
func NewWidthResolver(opts ...WidthOption) *WidthResolver {
	r := &WidthResolver{
		lookupEnv: os.LookupEnv,
		query:     TputColumns,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Width returns the resolved terminal width.
func (r *WidthResolver) Width() int {
	if r.configured > 0 {
		return r.configured
	}

	if r.lookupEnv != nil {
		if val, ok := r.lookupEnv(ColumnsEnv); ok {
			if w, err := parseWidth(val); err == nil {
				return w
			}
		}
	}

	if w := r.queriedWidth(); w > 0 {
		return w
	}

	return DefaultWidth
}

// queriedWidth runs the query at most once per resolver; a failed query is
// remembered as zero.
func (r *WidthResolver) queriedWidth() int {
	r.queryOnce.Do(func() {
		if r.query == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), QueryTimeout)
		defer cancel()

		out, err := r.query(ctx)
		if err == nil {
			w, perr := parseWidth(firstField(out))
			if perr == nil {
				r.queryWidth = w
				return
			}
			err = fmt.Errorf("parsing query output %q: %w", strings.TrimSpace(out), perr)
		}
		r.logger.Warn("could not determine terminal width, using default",
			zap.Int("default", DefaultWidth),
			zap.Error(err))
	})
	return r.queryWidth
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func parseWidth(s string) (int, error) {
	w, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if w <= 0 {
		return 0, fmt.Errorf("non-positive width %d", w)
	}
	return w, nil
}
