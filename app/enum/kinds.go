package enum

//go:generate go run github.com/go-pkgz/enum@latest -type bodyKind -lower
type bodyKind int

// body kinds, auto picks one from the request method and media type
const (
	bodyKindAuto bodyKind = iota
	bodyKindNone
	bodyKindJSON
	bodyKindForm
	bodyKindMultipart
)

//go:generate go run github.com/go-pkgz/enum@latest -type sessionAction -lower
type sessionAction int

// cookie side effects of a proxy route
const (
	sessionActionNone sessionAction = iota
	sessionActionLogin
	sessionActionLogout
)

//go:generate go run github.com/go-pkgz/enum@latest -type auditAction -lower
type auditAction int

const (
	auditActionRead auditAction = iota
	auditActionCreate
	auditActionUpdate
	auditActionDelete
)

//go:generate go run github.com/go-pkgz/enum@latest -type actorType -lower
type actorType int

const (
	actorTypeSession actorType = iota
	actorTypePublic
)

// IsSet reports whether the action changes the session cookie. The zero value is none.
func (e SessionAction) IsSet() bool { return e.value != sessionActionNone }
