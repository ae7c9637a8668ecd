package deck

import "fmt"

// ParamSpec describes a known deck parameter: the narrowest kind its
// value is expected to coerce to. String accepts anything, Float also
// accepts integers.
type ParamSpec struct {
	Name string
	Kind Kind
}

// knownParams is the registry of parameter names the linear-response
// and Casida decks use. The consuming engine owns the semantics; this
// registry exists only so a typo'd name or a string where a tolerance
// belongs is flagged before a job burns cluster hours on it.
var knownParams = map[string]ParamSpec{
	// Radial grid
	"nr":     {Name: "nr", Kind: Int},
	"rmax":   {Name: "rmax", Kind: Float},
	"lmax":   {Name: "lmax", Kind: Int},
	"nl":     {Name: "nl", Kind: Int},
	"h_grid": {Name: "h_grid", Kind: Float},

	// Basis
	"basis_eps":  {Name: "basis_eps", Kind: Float},
	"basis_size": {Name: "basis_size", Kind: Int},

	// Hamiltonian / exchange-correlation
	"h_method":      {Name: "h_method", Kind: String},
	"xc_functional": {Name: "xc_functional", Kind: String},

	// Frequency window
	"omega_min": {Name: "omega_min", Kind: Float},
	"omega_max": {Name: "omega_max", Kind: Float},
	"n_omega":   {Name: "n_omega", Kind: Int},
	"eta":       {Name: "eta", Kind: Float},

	// Iterative solvers
	"gmres_eps":     {Name: "gmres_eps", Kind: Float},
	"gmres_maxiter": {Name: "gmres_maxiter", Kind: Int},
	"gmres_restart": {Name: "gmres_restart", Kind: Int},
	"lanczos_steps": {Name: "lanczos_steps", Kind: Int},

	// Casida response
	"n_occ":       {Name: "n_occ", Kind: Int},
	"n_virt":      {Name: "n_virt", Kind: Int},
	"casida_full": {Name: "casida_full", Kind: String},

	// System
	"charge": {Name: "charge", Kind: Int},
	"spin":   {Name: "spin", Kind: Int},
}

// Issue is a non-fatal finding from Validate.
type Issue struct {
	Name   string
	Reason string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Name, i.Reason)
}

// Validate checks the deck against the known-parameter registry and
// returns one issue per unknown name or kind mismatch. Issues are
// advisory: the deck is still usable, since engines accept parameters
// this registry has never heard of.
func Validate(d *Deck) []Issue {
	var issues []Issue
	for _, name := range d.Keys() {
		v, _ := d.Lookup(name)
		spec, ok := knownParams[name]
		if !ok {
			issues = append(issues, Issue{Name: name, Reason: "unknown parameter"})
			continue
		}
		if !kindAccepts(spec.Kind, v.Kind()) {
			issues = append(issues, Issue{
				Name:   name,
				Reason: fmt.Sprintf("expected %s value, got %s %q", spec.Kind, v.Kind(), v.Raw()),
			})
		}
	}
	return issues
}

// kindAccepts reports whether a value of kind got satisfies an
// expected kind. Integers satisfy float parameters; strings accept
// anything since every value has a textual form.
func kindAccepts(want, got Kind) bool {
	switch want {
	case String:
		return true
	case Float:
		return got == Float || got == Int
	default:
		return got == want
	}
}
