package hydrate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/glint-ui/glint/pkg/vdom"
)

// Priority computation. An explicit numeric "priority" prop wins outright;
// otherwise the island starts from the default and collects bonuses. Ties
// are broken by registration order (FIFO).
const (
	PriorityDefault   = 10
	BonusAboveFold    = 50
	BonusCritical     = 30
	BonusClickHandler = 10

	// AboveFoldClass marks components rendered above the fold.
	AboveFoldClass = "above-fold"

	// CriticalMarker in a component name grants the critical bonus.
	CriticalMarker = "critical"
)

// RegistryConfig configures an island registry.
type RegistryConfig struct {
	// PriorityThreshold marks islands at or above it as eager. Zero means
	// every island is eager.
	PriorityThreshold int
}

// Registry records which rendered components need client-side activation.
// A registry is owned by a single render session; it is not a process-wide
// structure and is discarded with the session.
type Registry struct {
	cfg     RegistryConfig
	islands []*Island
	seq     uint64
}

// NewRegistry creates an empty registry for one render session.
func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{cfg: cfg}
}

// RegisterIfInteractive records the component as an island if it declares
// interaction hooks (on* props) or is explicitly marked interactive.
// Returns nil for non-interactive components.
func (r *Registry) RegisterIfInteractive(node *vdom.VNode) *Island {
	if node == nil || !node.IsInteractive() {
		return nil
	}

	id := uuid.NewString()
	island := &Island{
		ID:        id,
		Selector:  fmt.Sprintf("[data-island=%q]", id),
		Component: node.Name,
		Props:     serializableProps(node.Props),
		Priority:  computePriority(node),
		Deps:      collectDeps(node),
		seq:       r.seq,
	}
	island.Eager = island.Priority >= r.cfg.PriorityThreshold
	r.seq++
	r.islands = append(r.islands, island)
	return island
}

// Islands returns the registered islands in registration order.
func (r *Registry) Islands() []*Island {
	return r.islands
}

// computePriority applies the priority rule in precedence order:
// explicit prop, above-the-fold class bonus, critical name bonus,
// click-handler bonus, default.
func computePriority(node *vdom.VNode) int {
	if p, ok := explicitPriority(node.Props["priority"]); ok {
		return p
	}

	p := PriorityDefault
	if class, ok := classProp(node.Props); ok && strings.Contains(class, AboveFoldClass) {
		p += BonusAboveFold
	}
	if strings.Contains(strings.ToLower(node.Name), CriticalMarker) {
		p += BonusCritical
	}
	if hasClickHandler(node.Props) {
		p += BonusClickHandler
	}
	return p
}

func explicitPriority(v any) (int, bool) {
	switch p := v.(type) {
	case int:
		return p, true
	case int64:
		return int(p), true
	case float64:
		return int(p), true
	default:
		return 0, false
	}
}

func classProp(props vdom.Props) (string, bool) {
	for _, key := range []string{"class", "className"} {
		if s, ok := props[key].(string); ok {
			return s, true
		}
	}
	return "", false
}

func hasClickHandler(props vdom.Props) bool {
	for key := range props {
		switch strings.ToLower(key) {
		case "onclick", "ondblclick":
			return true
		}
	}
	return false
}

// collectDeps merges the component's declared dependency list with any prop
// value recognized as a deferred-module reference. The result is sorted and
// de-duplicated for deterministic scheduling.
func collectDeps(node *vdom.VNode) []string {
	seen := make(map[string]bool, len(node.Deps))
	var deps []string

	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}

	for _, d := range node.Deps {
		add(d)
	}
	for _, v := range node.Props {
		if ref, ok := v.(vdom.ModuleRef); ok {
			add(string(ref))
		}
	}

	sort.Strings(deps)
	return deps
}

// serializableProps copies props, dropping handler values and the walker's
// injected children so the result round-trips through JSON.
func serializableProps(props vdom.Props) map[string]any {
	out := make(map[string]any, len(props))
	for key, value := range props {
		if key == "children" {
			continue
		}
		if strings.HasPrefix(key, "on") && looksLikeFunc(value) {
			continue
		}
		if ref, ok := value.(vdom.ModuleRef); ok {
			out[key] = string(ref)
			continue
		}
		out[key] = value
	}
	return out
}

func looksLikeFunc(value any) bool {
	if value == nil {
		return false
	}
	return strings.HasPrefix(fmt.Sprintf("%T", value), "func")
}
