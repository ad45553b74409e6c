package intern

import (
	"encoding/binary"
	"errors"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"github.com/op/go-logging"

	"github.com/lbfalvy/orchid-sub001/internal/obslog"
)

// Requester is the RPC surface a replica needs from the transport layer:
// the four interning requests an extension sends to its host, scoped
// down by a reqnot.Mapped requester so this package never touches the
// wire protocol directly.
type Requester interface {
	InternStr(value string) (token uint64, err error)
	InternStrv(value []uint64) (token uint64, err error)
	ExternStr(token uint64) (value string, err error)
	ExternStrv(token uint64) (value []uint64, err error)
}

// Interner is a process-wide string/token-vector interner. It acts as
// the master when requester is nil, and as a replica (forwarding misses
// over RPC) otherwise.
type Interner struct {
	requester Requester
	log       *logging.Logger

	counter uint64 // master only; next token is counter+1

	strings *bimap[string]
	vectors *bimap[string] // keyed by the encoded vector; see vectorKey

	// replicaCache is a bounded, lossy cache of recently deinterned
	// values on a replica. A miss just re-issues ExternStr/ExternStrv,
	// so eviction never threatens correctness, unlike the transport's
	// pending-request table, which cannot tolerate losing an entry and
	// so stays unbounded.
	replicaCache *lru.Cache
}

func vectorKey(v []uint64) string {
	b := make([]byte, 8*len(v))
	for i, tok := range v {
		binary.BigEndian.PutUint64(b[i*8:], tok)
	}
	return string(b)
}

func newMaster(log *logging.Logger) *Interner {
	return &Interner{
		log:     log,
		strings: newBimap[string](),
		vectors: newBimap[string](),
	}
}

func newReplica(requester Requester, log *logging.Logger) *Interner {
	cache, _ := lru.New(4096)
	return &Interner{
		requester:    requester,
		log:          log,
		strings:      newBimap[string](),
		vectors:      newBimap[string](),
		replicaCache: cache,
	}
}

// IsReplica reports whether this Interner forwards misses to a master.
func (in *Interner) IsReplica() bool { return in.requester != nil }

func (in *Interner) allocate() (uint64, error) {
	if in.requester != nil {
		return 0, errors.New("intern: replica cannot allocate a token locally")
	}
	return atomic.AddUint64(&in.counter, 1), nil
}

// InternStr returns value's token, allocating one (locally on the
// master, by RPC on a replica) if value has not been seen before.
func (in *Interner) InternStr(value string) (StrToken, error) {
	var token uint64
	var err error
	if in.requester == nil {
		token, err = in.strings.internOrAllocate(value, value, in.allocate)
	} else {
		token, err = in.strings.internOrAllocate(value, value, func() (uint64, error) {
			return in.requester.InternStr(value)
		})
	}
	if err != nil {
		return 0, err
	}
	return StrToken(token), nil
}

// DeinternStr returns the string value for token, fetching it by RPC and
// caching it (replica only) if not already known locally.
func (in *Interner) DeinternStr(token StrToken) (string, error) {
	if v, ok := in.strings.get(uint64(token)); ok {
		return v, nil
	}
	if in.requester == nil {
		return "", errors.New("intern: unknown token on master")
	}
	if cached, ok := in.cacheGet(uint64(token), false); ok {
		in.strings.insertKnown(cached, cached, uint64(token))
		return cached, nil
	}
	value, err := in.requester.ExternStr(uint64(token))
	if err != nil {
		return "", err
	}
	in.strings.insertKnown(value, value, uint64(token))
	in.cachePut(uint64(token), value, false)
	return value, nil
}

// InternStrv is InternStr's analogue for ordered sequences of string
// tokens.
func (in *Interner) InternStrv(value []StrToken) (StrvToken, error) {
	raw := make([]uint64, len(value))
	for i, t := range value {
		raw[i] = uint64(t)
	}
	key := vectorKey(raw)
	var token uint64
	var err error
	if in.requester == nil {
		token, err = in.vectors.internOrAllocate(key, key, in.allocate)
	} else {
		token, err = in.vectors.internOrAllocate(key, key, func() (uint64, error) {
			return in.requester.InternStrv(raw)
		})
	}
	if err != nil {
		return 0, err
	}
	return StrvToken(token), nil
}

// DeinternStrv is DeinternStr's analogue for token-vectors. The returned
// slice is decoded fresh from the canonical encoded key on every call.
func (in *Interner) DeinternStrv(token StrvToken) ([]StrToken, error) {
	decode := func(key string) []StrToken {
		raw := []byte(key)
		out := make([]StrToken, len(raw)/8)
		for i := range out {
			out[i] = StrToken(binary.BigEndian.Uint64(raw[i*8:]))
		}
		return out
	}
	if key, ok := in.vectors.get(uint64(token)); ok {
		return decode(key), nil
	}
	if in.requester == nil {
		return nil, errors.New("intern: unknown token on master")
	}
	raw, err := in.requester.ExternStrv(uint64(token))
	if err != nil {
		return nil, err
	}
	key := vectorKey(raw)
	in.vectors.insertKnown(key, key, uint64(token))
	return decode(key), nil
}

// ServeInternStr answers a replica's InternStr RPC on the master: it
// finds or allocates value's token without retaining it, because the
// external reference belongs to the requesting replica's own bimap, not
// to this master. Calling InternStr here instead would leave the master
// holding a reference no caller will ever release.
func (in *Interner) ServeInternStr(value string) (StrToken, error) {
	if in.requester != nil {
		return 0, errors.New("intern: only a master serves InternStr requests")
	}
	token, err := in.strings.findOrAllocate(value, value, in.allocate)
	if err != nil {
		return 0, err
	}
	return StrToken(token), nil
}

// ServeInternStrv is ServeInternStr's analogue for token-vectors.
func (in *Interner) ServeInternStrv(value []uint64) (StrvToken, error) {
	if in.requester != nil {
		return 0, errors.New("intern: only a master serves InternStrv requests")
	}
	key := vectorKey(value)
	token, err := in.vectors.findOrAllocate(key, key, in.allocate)
	if err != nil {
		return 0, err
	}
	return StrvToken(token), nil
}

// ServeExternStr answers a replica's ExternStr RPC: a plain lookup, with
// no refcount change on the master's side.
func (in *Interner) ServeExternStr(token StrToken) (string, error) {
	if v, ok := in.strings.get(uint64(token)); ok {
		return v, nil
	}
	return "", errors.New("intern: unknown token on master")
}

// ServeExternStrv is ServeExternStr's analogue for token-vectors.
func (in *Interner) ServeExternStrv(token StrvToken) ([]StrToken, error) {
	key, ok := in.vectors.get(uint64(token))
	if !ok {
		return nil, errors.New("intern: unknown token on master")
	}
	raw := []byte(key)
	out := make([]StrToken, len(raw)/8)
	for i := range out {
		out[i] = StrToken(binary.BigEndian.Uint64(raw[i*8:]))
	}
	return out, nil
}

// ReleaseStr gives up the caller's external reference to a string token.
func (in *Interner) ReleaseStr(token StrToken) { in.strings.release(uint64(token)) }

// ReleaseStrv gives up the caller's external reference to a vector
// token.
func (in *Interner) ReleaseStrv(token StrvToken) { in.vectors.release(uint64(token)) }

func (in *Interner) cacheGet(token uint64, vector bool) (string, bool) {
	if in.replicaCache == nil {
		return "", false
	}
	v, ok := in.replicaCache.Get(cacheKey{token, vector})
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (in *Interner) cachePut(token uint64, value string, vector bool) {
	if in.replicaCache == nil {
		return
	}
	in.replicaCache.Add(cacheKey{token, vector}, value)
}

type cacheKey struct {
	token  uint64
	vector bool
}

// --- Process-wide singleton ---

var (
	globalMu    sync.Mutex
	global      *Interner
	globalIsSet bool
)

// Global returns the process-wide interner, lazily constructing it as a
// master on first use.
func Global() *Interner {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = newMaster(obslog.New("intern", logging.NOTICE))
	}
	globalIsSet = true
	return global
}

// InitReplica configures the process-wide interner as a replica
// forwarding misses to requester. It must be called before the
// interner's first use (including an implicit one via Global); calling
// it afterward is a defect and returns an error instead of silently
// reconfiguring a live interner.
func InitReplica(requester Requester) error {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalIsSet {
		return errors.New("intern: InitReplica called after the interner was already in use")
	}
	global = newReplica(requester, obslog.New("intern", logging.INFO))
	globalIsSet = true
	return nil
}

// resetGlobalForTest clears the process-wide singleton; test-only.
func resetGlobalForTest() {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = nil
	globalIsSet = false
}
