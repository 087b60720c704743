package cloudpay

import (
	"sync"
	"sync/atomic"
)

// Family groups error kinds by the layer that produces them.
type Family int

const (
	// FamilyHTTP kinds are keyed by an HTTP status >= 300.
	FamilyHTTP Family = iota
	// FamilyGateway kinds are keyed by a gateway reason code.
	FamilyGateway
)

func (f Family) String() string {
	switch f {
	case FamilyHTTP:
		return "http"
	case FamilyGateway:
		return "gateway"
	default:
		return "unknown"
	}
}

// ErrorKind identifies one entry of the error taxonomy. Kinds are singletons:
// compare them by pointer, or pass one to errors.Is as the target.
type ErrorKind struct {
	name    string
	code    int
	family  Family
	dynamic bool
}

// Name is the kind's taxonomy name, e.g. "NotFound" or "InsufficientFunds".
func (k *ErrorKind) Name() string { return k.name }

// Code is the HTTP status or reason code the kind was first registered for.
func (k *ErrorKind) Code() int { return k.code }

// Family reports whether the kind is an HTTP or a gateway kind.
func (k *ErrorKind) Family() Family { return k.family }

// Dynamic reports whether the kind was registered at runtime.
func (k *ErrorKind) Dynamic() bool { return k.dynamic }

// Error lets a kind act as an errors.Is target.
func (k *ErrorKind) Error() string {
	return "cloudpay: " + k.family.String() + " " + k.name
}

var httpStatusNames = map[int]string{
	300: "MultipleChoices",
	301: "MovedPermanently",
	302: "Found",
	303: "SeeOther",
	304: "NotModified",
	305: "UseProxy",
	307: "TemporaryRedirect",
	308: "PermanentRedirect",

	400: "BadRequest",
	401: "Unauthorized",
	402: "PaymentRequired",
	403: "Forbidden",
	404: "NotFound",
	405: "MethodNotAllowed",
	406: "NotAcceptable",
	407: "ProxyAuthenticationRequired",
	408: "RequestTimeout",
	409: "Conflict",
	410: "Gone",
	411: "LengthRequired",
	412: "PreconditionFailed",
	413: "RequestEntityTooLarge",
	414: "RequestURITooLong",
	415: "UnsupportedMediaType",
	416: "RequestedRangeNotSatisfiable",
	417: "ExpectationFailed",
	418: "ImATeapot",
	421: "TooManyConnectionsFromThisIP",
	426: "UpgradeRequired",
	450: "BlockedByWindowsParentalControls",
	494: "RequestHeaderTooLarge",
	497: "HTTPToHTTPS",
	499: "ClientClosedRequest",

	500: "InternalServerError",
	501: "NotImplemented",
	502: "BadGateway",
	503: "ServiceUnavailable",
	504: "GatewayTimeout",
	505: "HTTPVersionNotSupported",
	506: "VariantAlsoNegotiates",
	510: "NotExtended",
}

// reasonCodes lists the gateway's documented decline reasons. Two codes may
// share a name; they then share one kind.
var reasonCodes = []struct {
	code int
	name string
}{
	{5001, "ReferToCardIssuer"},
	{5003, "InvalidMerchant"},
	{5004, "PickUpCard"},
	{5005, "DoNotHonor"},
	{5006, "Error"},
	{5007, "PickUpCardSpecialConditions"},
	{5012, "InvalidTransaction"},
	{5013, "AmountError"},
	{5014, "InvalidCardNumber"},
	{5015, "NoSuchIssuer"},
	{5019, "TransactionError"},
	{5030, "FormatError"},
	{5031, "BankNotSupportedBySwitch"},
	{5033, "ExpiredCardPickup"},
	{5034, "SuspectedFraud"},
	{5036, "RestrictedCard"},
	{5041, "LostCard"},
	{5043, "StolenCard"},
	{5051, "InsufficientFunds"},
	{5054, "ExpiredCard"},
	{5057, "TransactionNotPermitted"},
	{5062, "RestrictedCard"},
	{5063, "SecurityViolation"},
	{5065, "ExceedWithdrawalFrequency"},
	{5082, "IncorrectCVV"},
	{5091, "Timeout"},
	{5092, "CannotReachNetwork"},
	{5096, "SystemError"},
	{5204, "UnableToProcess"},
	{5206, "AuthenticationFailed"},
	{5207, "AuthenticationUnavailable"},
	{5300, "AntiFraud"},
}

var (
	httpKinds                    = buildHTTPKinds()
	reasonKinds, reasonKindNames = buildReasonKinds()

	// KindServerError is used for HTTP statuses >= 300 missing from the
	// fixed status table.
	KindServerError = &ErrorKind{name: "ServerError", family: FamilyHTTP}
)

func buildHTTPKinds() map[int]*ErrorKind {
	kinds := make(map[int]*ErrorKind, len(httpStatusNames))
	for status, name := range httpStatusNames {
		kinds[status] = &ErrorKind{name: name, code: status, family: FamilyHTTP}
	}
	return kinds
}

func buildReasonKinds() (map[int]*ErrorKind, map[string]*ErrorKind) {
	byCode := make(map[int]*ErrorKind, len(reasonCodes))
	byName := make(map[string]*ErrorKind, len(reasonCodes))
	for _, rc := range reasonCodes {
		kind, ok := byName[rc.name]
		if !ok {
			kind = &ErrorKind{name: rc.name, code: rc.code, family: FamilyGateway}
			byName[rc.name] = kind
		}
		byCode[rc.code] = kind
	}
	return byCode, byName
}

// KindForStatus returns the fixed kind for an HTTP status. The status table
// never grows at runtime.
func KindForStatus(status int) (*ErrorKind, bool) {
	kind, ok := httpKinds[status]
	return kind, ok
}

var defaultRetryable = []string{
	"FormatError",
	"InsufficientFunds",
	"Timeout",
	"CannotReachNetwork",
	"SystemError",
}

// Registry resolves gateway reason codes to error kinds. Codes outside the
// fixed table get a kind created on first use and memoized; lookups after
// registration do not take a lock.
type Registry struct {
	mu        sync.Mutex
	byCode    sync.Map // int -> *ErrorKind
	byName    sync.Map // string -> *ErrorKind
	retryable atomic.Pointer[map[*ErrorKind]struct{}]
}

// NewRegistry creates a registry seeded with the fixed reason-code table and
// the default retryable kinds.
func NewRegistry() *Registry {
	r := &Registry{}
	r.SetRetryable(reasonKindsNamed(defaultRetryable)...)
	return r
}

// DefaultRegistry is the process-wide registry used by the package-level
// helpers and by namespaces.
var DefaultRegistry = NewRegistry()

// LookupReason returns the kind registered for code without creating one.
func (r *Registry) LookupReason(code int) (*ErrorKind, bool) {
	if kind, ok := reasonKinds[code]; ok {
		return kind, true
	}
	if v, ok := r.byCode.Load(code); ok {
		return v.(*ErrorKind), true
	}
	return nil, false
}

// ReasonKind returns the kind for code, registering one named label when the
// code is unknown. The label only matters on first registration: later calls
// for the same code get the already registered kind back whatever label they
// pass. A label that names an existing kind reuses that kind.
func (r *Registry) ReasonKind(code int, label string) *ErrorKind {
	if kind, ok := r.LookupReason(code); ok {
		return kind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.byCode.Load(code); ok {
		return v.(*ErrorKind)
	}

	kind := r.kindNamed(label, code)
	r.byCode.Store(code, kind)
	return kind
}

// kindNamed finds or creates the gateway kind called name. Callers hold r.mu.
func (r *Registry) kindNamed(name string, code int) *ErrorKind {
	if kind, ok := reasonKindNames[name]; ok {
		return kind
	}
	if v, ok := r.byName.Load(name); ok {
		return v.(*ErrorKind)
	}
	kind := &ErrorKind{name: name, code: code, family: FamilyGateway, dynamic: true}
	r.byName.Store(name, kind)
	return kind
}

// DynamicKinds returns a snapshot of the kinds registered at runtime, keyed by
// reason code. Order is unspecified.
func (r *Registry) DynamicKinds() map[int]*ErrorKind {
	out := make(map[int]*ErrorKind)
	r.byCode.Range(func(key, value any) bool {
		out[key.(int)] = value.(*ErrorKind)
		return true
	})
	return out
}

// SetRetryable replaces the set of gateway kinds that IsRetryable accepts.
func (r *Registry) SetRetryable(kinds ...*ErrorKind) {
	set := make(map[*ErrorKind]struct{}, len(kinds))
	for _, kind := range kinds {
		if kind != nil {
			set[kind] = struct{}{}
		}
	}
	r.retryable.Store(&set)
}

// Retryable reports whether kind belongs to the retryable set.
func (r *Registry) Retryable(kind *ErrorKind) bool {
	set := r.retryable.Load()
	if set == nil || kind == nil {
		return false
	}
	_, ok := (*set)[kind]
	return ok
}

// KindForReasonCode resolves code on the DefaultRegistry, registering it
// under label when unknown.
func KindForReasonCode(code int, label string) *ErrorKind {
	return DefaultRegistry.ReasonKind(code, label)
}

// LookupReasonCode resolves code on the DefaultRegistry without registering.
func LookupReasonCode(code int) (*ErrorKind, bool) {
	return DefaultRegistry.LookupReason(code)
}

func reasonKindsNamed(names []string) []*ErrorKind {
	kinds := make([]*ErrorKind, 0, len(names))
	for _, name := range names {
		if kind, ok := reasonKindNames[name]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
