package session

import "github.com/golang-jwt/jwt/v5"

// claimsFromToken extracts display identity (sub, role) from the access
// token without verifying it. The client never validates tokens locally;
// the backend's 401 is the only validity signal. The claims are used purely
// for the prompt and the whoami command.
func claimsFromToken(token string) (username, role string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", ""
	}
	username, _ = claims["sub"].(string)
	role, _ = claims["role"].(string)
	return username, role
}
