package signup

// PolicyInput is the input document of the sign-up policy.
type PolicyInput struct {
	Trigger        string            `json:"trigger"`
	UserPoolID     string            `json:"userPoolId"`
	ClientID       string            `json:"clientId"`
	UserName       string            `json:"userName"`
	Email          string            `json:"email"`
	Domain         string            `json:"domain"`
	UserAttributes map[string]string `json:"userAttributes"`
	ClientMetadata map[string]string `json:"clientMetadata"`
	ValidationData map[string]string `json:"validationData"`
}

// PolicyOutput is the result document of the sign-up policy.
type PolicyOutput struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason,omitempty"`
}
