package permission

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signet-auth/signet"
)

// ClaimKey is the claim under which encoded permission masks are stored.
const ClaimKey = "pems"

const maxBitsPerGroup = 63

// Registry maps permission names to bit positions, grouped by permission
// group. Each group encodes to one non-negative int64 mask, so a group
// holds at most 63 permissions.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[string]int
	frozen bool
}

// NewRegistry creates an empty permission registry.
func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[string]map[string]int),
	}
}

// RegisterGroup assigns bits 0..n-1 to the named permissions of a group,
// in slice order. Re-registering a group or registering after Freeze is an
// error.
func (r *Registry) RegisterGroup(group string, names []string) error {
	if group == "" {
		return errors.New("permission group cannot be empty")
	}
	if len(names) > maxBitsPerGroup {
		return fmt.Errorf("permission group %q exceeds %d permissions", group, maxBitsPerGroup)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.New("registry frozen")
	}
	if _, ok := r.groups[group]; ok {
		return fmt.Errorf("permission group %q already registered", group)
	}

	bits := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return errors.New("permission name cannot be empty")
		}
		if _, ok := bits[name]; ok {
			return fmt.Errorf("duplicate permission %q in group %q", name, group)
		}
		bits[name] = i
	}

	r.groups[group] = bits
	return nil
}

// Freeze locks the registry against further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Encode turns group→names into group→bitmask. Unknown groups or names are
// an error: silently dropping a permission would weaken tokens without a
// trace.
func (r *Registry) Encode(perms map[string][]string) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64, len(perms))
	for group, names := range perms {
		bits, ok := r.groups[group]
		if !ok {
			return nil, fmt.Errorf("unknown permission group %q", group)
		}
		var mask int64
		for _, name := range names {
			bit, ok := bits[name]
			if !ok {
				return nil, fmt.Errorf("unknown permission %q in group %q", name, group)
			}
			mask |= 1 << bit
		}
		out[group] = mask
	}
	return out, nil
}

// Decode turns group→bitmask back into group→names. Unknown groups and
// bits without a registered name are skipped: a verifier with an older
// registry must still read what it knows.
func (r *Registry) Decode(masks map[string]int64) map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(masks))
	for group, mask := range masks {
		bits, ok := r.groups[group]
		if !ok {
			continue
		}
		names := make([]string, 0)
		for name, bit := range bits {
			if mask&(1<<bit) != 0 {
				names = append(names, name)
			}
		}
		out[group] = names
	}
	return out
}

// EncodeIntoClaims encodes perms and stores the masks under [ClaimKey] in
// a copy of claims. Intended for use inside an Owner.BuildClaims hook.
func (r *Registry) EncodeIntoClaims(claims signet.Claims, perms map[string][]string) (signet.Claims, error) {
	masks, err := r.Encode(perms)
	if err != nil {
		return nil, err
	}

	encoded := make(map[string]any, len(masks))
	for group, mask := range masks {
		encoded[group] = mask
	}

	out := claims.Clone()
	out[ClaimKey] = encoded
	return out, nil
}

// FromClaims reads the masks stored under [ClaimKey] and decodes them.
// Mask values survive a JSON round trip as float64; both shapes are
// accepted. Claims without the key decode to an empty map.
func (r *Registry) FromClaims(claims signet.Claims) map[string][]string {
	raw, ok := claims[ClaimKey].(map[string]any)
	if !ok {
		return map[string][]string{}
	}

	masks := make(map[string]int64, len(raw))
	for group, v := range raw {
		switch n := v.(type) {
		case int64:
			masks[group] = n
		case int:
			masks[group] = int64(n)
		case float64:
			masks[group] = int64(n)
		}
	}
	return r.Decode(masks)
}

// Has reports whether the claims grant one named permission.
func (r *Registry) Has(claims signet.Claims, group, name string) bool {
	r.mu.RLock()
	bits, ok := r.groups[group]
	var bit int
	if ok {
		bit, ok = bits[name]
	}
	r.mu.RUnlock()
	if !ok {
		return false
	}

	raw, isMap := claims[ClaimKey].(map[string]any)
	if !isMap {
		return false
	}
	var mask int64
	switch n := raw[group].(type) {
	case int64:
		mask = n
	case int:
		mask = int64(n)
	case float64:
		mask = int64(n)
	default:
		return false
	}
	return mask&(1<<bit) != 0
}

// All reports whether the claims grant every listed permission.
func (r *Registry) All(claims signet.Claims, group string, names ...string) bool {
	for _, name := range names {
		if !r.Has(claims, group, name) {
			return false
		}
	}
	return true
}

// Any reports whether the claims grant at least one listed permission.
func (r *Registry) Any(claims signet.Claims, group string, names ...string) bool {
	for _, name := range names {
		if r.Has(claims, group, name) {
			return true
		}
	}
	return false
}
