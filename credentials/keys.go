package credentials

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	userKey         = "user"
	profileKey      = "profile"
)

// Keys are the fully qualified storage keys for one namespace.
type Keys struct {
	AccessToken  string
	RefreshToken string
	User         string
	Profile      string
}

// NamespacedKeys returns the keys prefixed with "<namespace>:". An empty namespace leaves them bare.
func NamespacedKeys(namespace string) Keys {
	prefix := ""
	if namespace != "" {
		prefix = namespace + ":"
	}
	return Keys{
		AccessToken:  prefix + accessTokenKey,
		RefreshToken: prefix + refreshTokenKey,
		User:         prefix + userKey,
		Profile:      prefix + profileKey,
	}
}

// All returns every key in a stable order.
func (k Keys) All() []string {
	return []string{k.AccessToken, k.RefreshToken, k.User, k.Profile}
}
