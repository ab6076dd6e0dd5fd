package core

// DIDDocument describes the verification material controlled by a DID.
// The registry stores it as an opaque JSON document keyed by the DID string;
// only the ID field is interpreted by this service.
type DIDDocument struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	Controller         string               `json:"controller,omitempty"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
}

// VerificationMethod is a single key entry in a DID document.
type VerificationMethod struct {
	ID                  string `json:"id"`
	Type                string `json:"type"`
	Controller          string `json:"controller"`
	BlockchainAccountID string `json:"blockchainAccountId,omitempty"`
	PublicKeyHex        string `json:"publicKeyHex,omitempty"`
}

// ResolutionMetadata reports the outcome of a DID resolution. Error is empty
// on success; "notFound" and "deactivated" follow the W3C DID resolution
// error codes.
type ResolutionMetadata struct {
	Error string `json:"error,omitempty"`
}

// ResolutionResult is the envelope returned by DID resolution.
type ResolutionResult struct {
	Document *DIDDocument       `json:"didDocument"`
	Metadata ResolutionMetadata `json:"didResolutionMetadata"`
}
