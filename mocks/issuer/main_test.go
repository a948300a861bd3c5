package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestIssueAcceptsClientWireShape posts the exact body the marketplace
// client sends (string "type", validityDays, revocable, proofType) and
// checks the response unmarshals into the client's expected envelope.
func TestIssueAcceptsClientWireShape(t *testing.T) {
	body := `{
		"subjectDid": "did:ethr:0x1234567890abcdef1234567890abcdef12345678",
		"type": "HumanityCredential",
		"claims": {"walletAddress": "0x1234567890abcdef1234567890abcdef12345678", "isHuman": true},
		"validityDays": 365,
		"revocable": true,
		"proofType": "DataIntegrityProof"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/credentials/issue", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handleIssue(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp IssueResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response did not unmarshal: %v", err)
	}
	if resp.Message == "" {
		t.Error("expected a message in the issue response")
	}
	if len(resp.Credential.Type) != 2 || resp.Credential.Type[1] != "HumanityCredential" {
		t.Errorf("unexpected credential type tags: %v", resp.Credential.Type)
	}
	if got, _ := resp.Credential.CredentialSubject["isHuman"].(bool); !got {
		t.Error("expected isHuman claim to carry through")
	}
}

// TestRevokeResponseShape checks the revoke envelope uses the status and
// message fields the client decodes.
func TestRevokeResponseShape(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/credentials/revoke",
		strings.NewReader(`{"credentialId": "urn:uuid:test-revoke"}`))
	rec := httptest.NewRecorder()
	handleRevoke(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status          string `json:"status"`
		Message         string `json:"message"`
		TransactionHash string `json:"transactionHash"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response did not unmarshal: %v", err)
	}
	if resp.Status != "revoked" || resp.Message == "" || resp.TransactionHash == "" {
		t.Errorf("unexpected revoke envelope: %+v", resp)
	}
}
