package errs

// Code 对外稳定的错误码
type Code string

const (
	// 通用
	Unknown            Code = "UNKNOWN"
	IDIsRequired       Code = "ID_IS_REQUIRED"
	BadJSON            Code = "BAD_JSON"
	UUIDSyntaxError    Code = "UUID_SYNTAX_ERROR"
	RecordNotFound     Code = "RECORD_NOT_FOUND"
	RecordExists       Code = "RECORD_ALREADY_EXISTS"
	NameRequired       Code = "NAME_REQUIRED"
	RouteNotFound      Code = "ROUTE_NOT_FOUND"
	TooManyRequests    Code = "TOO_MANY_REQUESTS"
	ServerBusy         Code = "SERVER_BUSY"
	RequestTooLarge    Code = "REQUEST_TOO_LARGE"
	RequestTimeout     Code = "TIMEOUT"
	ServiceUnavailable Code = "SERVICE_UNAVAILABLE"

	// 认证
	WrongCredentials     Code = "WRONG_CREDENTIALS"
	AccessTokenNotFound  Code = "ACCESS_TOKEN_NOT_FOUND"
	RefreshTokenNotFound Code = "REFRESH_TOKEN_NOT_FOUND"
	UserNotLoggedIn      Code = "USER_NOT_LOGGED_IN"
	TokenExpired         Code = "TOKEN_EXPIRED"
	WrongTokenType       Code = "WRONG_TOKEN_TYPE"
	SigningNotConfigured Code = "SIGNING_NOT_CONFIGURED"
	AuthTypeNotSupported Code = "AUTH_TYPE_NOT_SUPPORTED"

	// 用户
	UserAlreadyExists     Code = "USER_ALREADY_EXISTS"
	UserIDNotFound        Code = "USER_ID_NOT_FOUND"
	UserNotFound          Code = "USER_NOT_FOUND"
	FirstnameRequired     Code = "FIRSTNAME_REQUIRED"
	LastnameRequired      Code = "LASTNAME_REQUIRED"
	EmailRequired         Code = "EMAIL_REQUIRED"
	EmailInvalid          Code = "EMAIL_INVALID"
	UsernameRequired      Code = "USERNAME_REQUIRED"
	PasswordRequired      Code = "PASSWORD_REQUIRED"
	EmailAlreadyExist     Code = "EMAIL_ALREADY_EXIST"
	UsernameLength        Code = "USERNAME_LENGTH"
	UsernameAlphanumeric  Code = "USERNAME_ALPHANUMERIC"
	UsernameAlreadyExist  Code = "USERNAME_ALREADY_EXIST"
	GenderInvalid         Code = "GENDER_INVALID"
	CannotDeleteAdminUser Code = "CANNOT_DELETE_ADMIN_USER"

	// 权限 / 角色
	OperationCodeNotFound    Code = "OPERATION_CODE_NOT_FOUND"
	PermissionDenied         Code = "PERMISSION_DENIED"
	PermissionIDRequired     Code = "PERMISSION_ID_REQURIED"
	PermissionNotFound       Code = "PERMISSION_NOT_FOUND"
	RoleNameRequired         Code = "ROLE_NAME_REQUIRED"
	RoleNameMustBeUnique     Code = "ROLE_NAME_MUST_BE_UNIQE"
	RoleNotFound             Code = "ROLE_NOT_FOUND"
	RoleIDRequired           Code = "ROLE_ID_REQURIED"
	RoleDeleteRestriction    Code = "ROLE_DELETE_RESTRICTION"
	RoleOfAdminNotChangeable Code = "ROLE_OF_ADMIN_NOT_CHANGEABLE"
	PermissionCodeNotUnique  Code = "PERMISSION_CODE_MUST_BE_UNIQUE"

	// 商品目录
	ProductNotFound     Code = "PRODUCT_NOT_FOUND"
	CategoryNotFound    Code = "CATEGORY_NOT_FOUND"
	AttributeNotFound   Code = "ATTRIBUTE_NOT_FOUND"
	CategoryParentCycle Code = "CATEGORY_PARENT_CYCLE"
)

type def struct {
	kind Kind
	desc string
}

// registry 每个 code 只登记一次
var registry = map[Code]def{
	Unknown:            {KindInternal, "Unknown error occurred."},
	IDIsRequired:       {KindValidation, "Id is required."},
	BadJSON:            {KindSyntax, "Malformed request or token."},
	UUIDSyntaxError:    {KindSyntax, "Id is not a valid UUID."},
	RecordNotFound:     {KindNotFound, "Record not found."},
	RecordExists:       {KindConflict, "Record already exists."},
	NameRequired:       {KindValidation, "Name is required."},
	RouteNotFound:      {KindNotFound, "Route not found."},
	TooManyRequests:    {KindRateLimited, "Too many requests."},
	ServerBusy:         {KindUnavailable, "Server is busy, try again later."},
	RequestTooLarge:    {KindValidation, "Request body is too large."},
	RequestTimeout:     {KindUnavailable, "Request timed out."},
	ServiceUnavailable: {KindUnavailable, "Upstream service unavailable."},

	WrongCredentials:     {KindUnauthorized, "Username or password is wrong."},
	AccessTokenNotFound:  {KindUnauthorized, "Access token not found."},
	RefreshTokenNotFound: {KindUnauthorized, "Refresh token not found."},
	UserNotLoggedIn:      {KindUnauthorized, "User is not logged in."},
	TokenExpired:         {KindUnauthorized, "Token is expired."},
	WrongTokenType:       {KindUnauthorized, "Token type is wrong."},
	SigningNotConfigured: {KindInternal, "Token signing is not configured."},
	AuthTypeNotSupported: {KindValidation, "Auth type is not supported."},

	UserAlreadyExists:     {KindConflict, "User already exists."},
	UserIDNotFound:        {KindNotFound, "User id not found."},
	UserNotFound:          {KindNotFound, "User not found."},
	FirstnameRequired:     {KindValidation, "Firstname is required."},
	LastnameRequired:      {KindValidation, "Lastname is required."},
	EmailRequired:         {KindValidation, "Email is required."},
	EmailInvalid:          {KindValidation, "Email is invalid."},
	UsernameRequired:      {KindValidation, "Username is required."},
	PasswordRequired:      {KindValidation, "Password is required."},
	EmailAlreadyExist:     {KindConflict, "Email already exists."},
	UsernameLength:        {KindValidation, "Username length must be between 5 and 20."},
	UsernameAlphanumeric:  {KindValidation, "Username must be alphanumeric."},
	UsernameAlreadyExist:  {KindConflict, "Username already exists."},
	GenderInvalid:         {KindValidation, "Gender must be male or female."},
	CannotDeleteAdminUser: {KindRestriction, "Admin user cannot be deleted."},

	OperationCodeNotFound:    {KindValidation, "Operation code is required."},
	PermissionDenied:         {KindForbidden, "Permission denied."},
	PermissionIDRequired:     {KindValidation, "Permission id is required."},
	PermissionNotFound:       {KindNotFound, "Permission not found."},
	RoleNameRequired:         {KindValidation, "Role name is required."},
	RoleNameMustBeUnique:     {KindConflict, "Role name must be unique."},
	RoleNotFound:             {KindNotFound, "Role not found."},
	RoleIDRequired:           {KindValidation, "Role id is required."},
	RoleDeleteRestriction:    {KindRestriction, "Role is protected and cannot be changed."},
	RoleOfAdminNotChangeable: {KindRestriction, "Admin role of a protected user cannot be changed."},
	PermissionCodeNotUnique:  {KindConflict, "Permission code must be unique."},

	ProductNotFound:     {KindNotFound, "Product not found."},
	CategoryNotFound:    {KindNotFound, "Category not found."},
	AttributeNotFound:   {KindNotFound, "Attribute not found."},
	CategoryParentCycle: {KindValidation, "Category cannot be its own ancestor."},
}

// Codes 返回全部已登记的 code
func Codes() []Code {
	out := make([]Code, 0, len(registry))
	for c := range registry {
		out = append(out, c)
	}
	return out
}
