package mgxs

import "fmt"

// Kind selects the cross section returned by a query.
type Kind int

const (
	Total Kind = iota
	Absorption
	Fission
	NuFission
	PromptNuFission
	DelayedNuFission
	Chi
	Scatter
	NuScatter
)

var kindNames = [...]string{
	Total:            "total",
	Absorption:       "absorption",
	Fission:          "fission",
	NuFission:        "nu-fission",
	PromptNuFission:  "prompt-nu-fission",
	DelayedNuFission: "delayed-nu-fission",
	Chi:              "chi",
	Scatter:          "scatter",
	NuScatter:        "nu-scatter",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// ParseKind maps a library-style name such as "nu-fission" to a Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown cross section kind: %s", name)
}

// Kinds lists every supported kind.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

const (
	// AnyGroup integrates over outgoing groups.
	AnyGroup = -1
	// AllDelayed sums over delayed neutron groups.
	AllDelayed = -1
)

// Request describes one cross-section query. All indices are 0-based.
type Request struct {
	Kind    Kind
	In      int
	Out     int
	Delayed int
	Mu      float64
	Angular bool
}

// NewRequest returns a group-integrated, angle-integrated query.
func NewRequest(kind Kind, in int) Request {
	return Request{Kind: kind, In: in, Out: AnyGroup, Delayed: AllDelayed}
}

// To restricts a scattering or chi query to one outgoing group.
func (r Request) To(out int) Request {
	r.Out = out
	return r
}

// WithCosine requests the angle-resolved scattering value at mu.
func (r Request) WithCosine(mu float64) Request {
	r.Mu = mu
	r.Angular = true
	return r
}

// ForDelayed restricts a delayed nu-fission query to one delayed group.
func (r Request) ForDelayed(d int) Request {
	r.Delayed = d
	return r
}

type shape struct {
	groups  int
	delayed int
	order   int
}

func (s shape) check(r Request) error {
	if !r.Kind.valid() {
		return violation("unsupported cross section %s", r.Kind)
	}
	if r.In < 0 || r.In >= s.groups {
		return violation("incoming group %d outside [0, %d)", r.In, s.groups)
	}
	if r.Out != AnyGroup {
		if r.Kind != Chi && r.Kind != Scatter && r.Kind != NuScatter {
			return violation("%s has no outgoing group", r.Kind)
		}
		if r.Out < 0 || r.Out >= s.groups {
			return violation("outgoing group %d outside [0, %d)", r.Out, s.groups)
		}
	}
	if r.Delayed != AllDelayed {
		if r.Kind != DelayedNuFission {
			return violation("%s has no delayed group", r.Kind)
		}
		if r.Delayed < 0 || r.Delayed >= s.delayed {
			return violation("delayed group %d outside [0, %d)", r.Delayed, s.delayed)
		}
	}
	if r.Angular {
		if r.Kind != Scatter && r.Kind != NuScatter {
			return violation("%s is not angle-resolved", r.Kind)
		}
		if s.order == 0 {
			return violation("angle-resolved %s requested from isotropic scattering data", r.Kind)
		}
		if r.Mu < -1 || r.Mu > 1 {
			return violation("scattering cosine %g outside [-1, 1]", r.Mu)
		}
	}
	return nil
}
