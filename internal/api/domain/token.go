package domain

// TokenPair is the result of a successful login, registration or refresh.
// User carries the account the tokens were issued for so clients get their
// identity in the same round trip.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string // always "Bearer"
	ExpiresIn    int64  // access token lifetime in seconds
	User         User
}
