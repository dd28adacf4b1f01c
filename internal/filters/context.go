package filters

import "net/url"

// ParamContext holds the parameters a filter parser reads for one request.
// Each request builds its own; it is not safe for concurrent use.
type ParamContext struct {
	args Args
}

// NewParamContext returns a context holding the flattened raw query values.
func NewParamContext(raw url.Values) *ParamContext {
	return &ParamContext{args: FromValues(raw)}
}

// Args returns a copy of the parameters currently in effect. Changing it
// does not affect pc.
func (pc *ParamContext) Args() Args {
	return pc.args.Clone()
}

// swap installs args and returns a func that puts the previous set back.
func (pc *ParamContext) swap(args Args) (restore func()) {
	prev := pc.args
	pc.args = args
	return func() { pc.args = prev }
}

// WithNormalized runs parse with the normalized form of pc's parameters
// installed as the current set. The original parameters are put back before
// WithNormalized returns, whether parse succeeds, fails or panics; parse's
// error is returned unchanged.
func WithNormalized[R any](pc *ParamContext, parse func(Args) (R, error)) (R, error) {
	normalized := Normalize(pc.args)

	restore := pc.swap(normalized)
	defer restore()

	return parse(normalized)
}
