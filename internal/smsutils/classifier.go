package smsutils

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"sms-ride-workers/internal/common/gmaps"
)

// Geocoder resolves a free-text address into ranked results.
// *gmaps.Client and *gmaps.CachedGeocoder satisfy it.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]gmaps.Result, error)
}

type parser struct {
	patterns []*regexp.Regexp
	handle   func(c *Classifier, ctx context.Context, match []string) (*Intent, error)
}

// space matches what \s does plus \v, no-break and other Unicode spaces that
// phone keyboards and SMS gateways insert.
const space = `[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]`

// pattern compiles expr with every \s widened to space.
func pattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(strings.ReplaceAll(expr, `\s`, space))
}

// parsers is tried top to bottom. Within a parser the patterns are tried in
// order and the first match wins.
var parsers = []parser{
	{
		patterns: []*regexp.Regexp{
			pattern(`(?i)^new\s+ride\s+from\s*:\s*([a-z0-9,](?:[a-z0-9,]|\s)*?)\s*;\s*to\s*:\s*([a-z0-9,](?:[a-z0-9,]|\s)*?)\s*\.?$`),
		},
		handle: func(c *Classifier, ctx context.Context, match []string) (*Intent, error) {
			return c.resolveRideRequest(ctx, match[1], match[2])
		},
	},
	{
		patterns: []*regexp.Regexp{pattern(`(?i)^(yes|y|yeah|yup|okp)\s*\.?$`)},
		handle:   constant(KindYes),
	},
	{
		patterns: []*regexp.Regexp{pattern(`(?i)^(n|nope|no)\s*\.?$`)},
		handle:   constant(KindNo),
	},
	{
		patterns: []*regexp.Regexp{pattern(`(?i)^cancel$`)},
		handle:   constant(KindCancel),
	},
}

func constant(kind Kind) func(*Classifier, context.Context, []string) (*Intent, error) {
	return func(*Classifier, context.Context, []string) (*Intent, error) {
		return newIntent(kind), nil
	}
}

// Classifier turns message text into an Intent. It holds no mutable state and
// is safe for concurrent use.
type Classifier struct {
	geocoder Geocoder
}

func NewClassifier(geocoder Geocoder) *Classifier {
	return &Classifier{geocoder: geocoder}
}

// Classify never fails for unrecognized text; it returns KindUnknown. The only
// error it returns is a *ClassificationError for an unresolvable ride request.
func (c *Classifier) Classify(ctx context.Context, text string) (*Intent, error) {
	normalized := strings.TrimSpace(text)

	for _, p := range parsers {
		for _, re := range p.patterns {
			if match := re.FindStringSubmatch(normalized); match != nil {
				return p.handle(c, ctx, match)
			}
		}
	}

	return newIntent(KindUnknown), nil
}

// resolveRideRequest geocodes both endpoints concurrently. Both lookups always
// run to completion; there is no short-circuit on the first failure.
func (c *Classifier) resolveRideRequest(ctx context.Context, from, to string) (*Intent, error) {
	var (
		fromResult, toResult gmaps.Result
		fromErr, toErr       error
		g                    errgroup.Group
	)

	g.Go(func() error {
		fromResult, fromErr = c.firstResult(ctx, strings.TrimSpace(from))
		return nil
	})
	g.Go(func() error {
		toResult, toErr = c.firstResult(ctx, strings.TrimSpace(to))
		return nil
	})
	_ = g.Wait()

	if fromErr != nil || toErr != nil {
		return nil, combineFailures(fromErr, toErr)
	}
	return newRideRequest(fromResult, toResult), nil
}

func (c *Classifier) firstResult(ctx context.Context, address string) (gmaps.Result, error) {
	results, err := c.geocoder.Geocode(ctx, address)
	if err != nil {
		return gmaps.Result{}, err
	}
	if len(results) == 0 {
		return gmaps.Result{}, &gmaps.APIError{Status: gmaps.StatusZeroResults}
	}
	return results[0], nil
}

// combineFailures prefers ZeroResults whenever either lookup reported it,
// independent of which lookup finished first.
func combineFailures(fromErr, toErr error) *ClassificationError {
	kind := ServiceUnavailable
	if gmaps.IsZeroResults(fromErr) || gmaps.IsZeroResults(toErr) {
		kind = ZeroResults
	}
	return &ClassificationError{Kind: kind, Err: errors.Join(fromErr, toErr)}
}
