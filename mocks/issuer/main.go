// Mock Humanity Protocol issuer API for local development and e2e tests.
// Deterministic: credentials are stored in memory, and "magic" DIDs let
// tests force specific failure modes.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultPort      = "8082"
	defaultAPIKey    = "issuer-secret-key"
	defaultLatencyMs = "100"
)

var (
	apiKey    = getEnv("API_KEY", defaultAPIKey)
	latencyMs = getEnvInt("LATENCY_MS", defaultLatencyMs)
)

// Magic DID fragments that control the mock's behavior.
const (
	fragmentOutage  = "outage"  // issue/verify answer 503
	fragmentRevoked = "revoked" // verify answers revoked
	fragmentExpired = "expired" // verify answers expired
)

type Credential struct {
	Context           []string       `json:"@context"`
	ID                string         `json:"id"`
	Type              []string       `json:"type"`
	Issuer            string         `json:"issuer"`
	ValidFrom         string         `json:"validFrom"`
	ValidUntil        string         `json:"validUntil"`
	CredentialSubject map[string]any `json:"credentialSubject"`
	Proof             map[string]any `json:"proof,omitempty"`
}

type IssueRequest struct {
	SubjectDID   string         `json:"subjectDid"`
	Type         string         `json:"type"`
	Claims       map[string]any `json:"claims"`
	ValidityDays int            `json:"validityDays"`
	Revocable    *bool          `json:"revocable"`
	ProofType    string         `json:"proofType"`
}

type IssueResponse struct {
	Message    string     `json:"message"`
	Credential Credential `json:"credential"`
}

type VerifyRequest struct {
	Credential Credential `json:"credential"`
}

type VerifyResponse struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
	Details struct {
		Expired        bool `json:"expired"`
		Revoked        bool `json:"revoked"`
		SignatureValid bool `json:"signatureValid"`
	} `json:"details"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// store holds issued credentials by holder DID.
var store = struct {
	sync.Mutex
	byHolder map[string][]Credential
	revoked  map[string]bool
}{
	byHolder: make(map[string][]Credential),
	revoked:  make(map[string]bool),
}

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/api/v1/credentials/issue", withAuth(handleIssue))
	http.HandleFunc("/api/v1/credentials/verify", withAuth(handleVerify))
	http.HandleFunc("/api/v1/credentials/revoke", withAuth(handleRevoke))
	http.HandleFunc("/api/v1/credentials/status/", withAuth(handleStatus))
	http.HandleFunc("/api/v1/credentials", withAuth(handleList))
	http.HandleFunc("/api/v1/issuer/info", withAuth(handleIssuerInfo))
	http.HandleFunc("/api/v1/schemas", withAuth(handleSchemas))

	log.Printf("🪪  Mock Humanity Issuer API starting on port %s", port)
	log.Printf("📝 API Key: %s", apiKey)
	log.Printf("⏱️  Simulated latency: %dms", latencyMs)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "humanity-issuer",
		"version": "1.0.0",
	})
}

func withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Duration(latencyMs) * time.Millisecond)
		log.Printf("📥 Incoming request: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		auth := r.Header.Get("Authorization")
		if auth == "" {
			sendError(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if auth != "Bearer "+apiKey {
			sendError(w, "Invalid API key", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func handleIssue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SubjectDID == "" {
		sendError(w, "subjectDid is required", http.StatusBadRequest)
		return
	}
	if strings.Contains(req.SubjectDID, fragmentOutage) {
		sendError(w, "Issuer temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	validity := req.ValidityDays
	if validity <= 0 {
		validity = 365
	}
	now := time.Now().UTC()
	subject := map[string]any{"id": req.SubjectDID}
	for k, v := range req.Claims {
		subject[k] = v
	}
	proofType := req.ProofType
	if proofType == "" {
		proofType = "DataIntegrityProof"
	}
	cred := Credential{
		Context: []string{
			"https://www.w3.org/2018/credentials/v1",
			"https://www.w3.org/2018/credentials/examples/v1",
		},
		ID:                fmt.Sprintf("urn:uuid:%08x-%04x-%04x-%04x-%012x", rand.Int31(), rand.Int31n(0xffff), rand.Int31n(0xffff), rand.Int31n(0xffff), rand.Int63n(1<<44)),
		Type:              []string{"VerifiableCredential", req.Type},
		Issuer:            "did:ethr:0xhumanityissuer",
		ValidFrom:         now.Format(time.RFC3339),
		ValidUntil:        now.AddDate(0, 0, validity).Format(time.RFC3339),
		CredentialSubject: subject,
		Proof: map[string]any{
			"type":               proofType,
			"created":            now.Format(time.RFC3339),
			"verificationMethod": "did:ethr:0xhumanityissuer#key-1",
			"proofPurpose":       "assertionMethod",
			"proofValue":         fmt.Sprintf("issuer-%08x", rand.Int31()),
		},
	}

	store.Lock()
	store.byHolder[req.SubjectDID] = append(store.byHolder[req.SubjectDID], cred)
	store.Unlock()

	writeJSON(w, http.StatusCreated, IssueResponse{
		Message:    "Credential issued successfully",
		Credential: cred,
	})
	log.Printf("✅ Issued credential %s for %s", cred.ID, req.SubjectDID)
}

func handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	subject, _ := req.Credential.CredentialSubject["id"].(string)
	var resp VerifyResponse
	resp.Details.SignatureValid = true

	store.Lock()
	revoked := store.revoked[req.Credential.ID]
	store.Unlock()

	switch {
	case strings.Contains(subject, fragmentOutage):
		sendError(w, "Verifier temporarily unavailable", http.StatusServiceUnavailable)
		return
	case revoked || strings.Contains(subject, fragmentRevoked):
		resp.Details.Revoked = true
		resp.Message = "Credential has been revoked"
	case strings.Contains(subject, fragmentExpired):
		resp.Details.Expired = true
		resp.Message = "Credential has expired"
	default:
		resp.IsValid = true
		resp.Message = "Credential is valid"
	}
	writeJSON(w, http.StatusOK, resp)
	log.Printf("🔍 Verified credential %s (valid=%v)", req.Credential.ID, resp.IsValid)
}

func handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	holder := r.URL.Query().Get("holderDid")
	if holder == "" {
		sendError(w, "holderDid is required", http.StatusBadRequest)
		return
	}
	page, pageSize := 1, 10
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && v > 0 {
		pageSize = v
	}

	store.Lock()
	all := store.byHolder[holder]
	store.Unlock()

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	creds := all[start:end]
	if creds == nil {
		creds = []Credential{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"credentials": creds,
		"total":       len(all),
		"page":        page,
		"pageSize":    pageSize,
	})
}

func handleRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		CredentialID string `json:"credentialId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CredentialID == "" {
		sendError(w, "credentialId is required", http.StatusBadRequest)
		return
	}

	store.Lock()
	store.revoked[req.CredentialID] = true
	store.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "revoked",
		"message":         "Credential revoked successfully",
		"transactionHash": fmt.Sprintf("0x%016x", rand.Int63()),
	})
	log.Printf("🚫 Revoked credential %s", req.CredentialID)
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	credID := strings.TrimPrefix(r.URL.Path, "/api/v1/credentials/status/")
	if credID == "" {
		sendError(w, "credential id is required", http.StatusBadRequest)
		return
	}

	store.Lock()
	revoked := store.revoked[credID]
	store.Unlock()

	status := "active"
	if revoked {
		status = "revoked"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      credID,
		"status":  status,
		"revoked": revoked,
		"expired": false,
	})
}

func handleIssuerInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"did":               "did:ethr:0xhumanityissuer",
		"name":              "Mock Humanity Issuer",
		"description":       "Simulated Humanity Protocol issuer for local development",
		"url":               "http://localhost:" + getEnv("PORT", defaultPort),
		"credentialsIssued": issuedCount(),
	})
}

func handleSchemas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"schemas": []map[string]any{
			{
				"id":          "humanity-v1",
				"name":        "HumanityCredential",
				"description": "Attests that the subject wallet belongs to a verified human",
				"properties": map[string]any{
					"walletAddress": map[string]any{"type": "string"},
					"isHuman":       map[string]any{"type": "boolean"},
				},
				"required": []string{"walletAddress", "isHuman"},
			},
			{
				"id":          "property-ownership-v1",
				"name":        "PropertyOwnership",
				"description": "Attests ownership of a physical property",
				"properties": map[string]any{
					"propertyAddress": map[string]any{"type": "string"},
					"currentHeight":   map[string]any{"type": "number"},
					"maximumHeight":   map[string]any{"type": "number"},
				},
				"required": []string{"propertyAddress"},
			},
			{
				"id":          "air-rights-v1",
				"name":        "AirRights",
				"description": "Attests tradable air rights above a property",
				"properties": map[string]any{
					"propertyAddress": map[string]any{"type": "string"},
					"maximumHeight":   map[string]any{"type": "number"},
					"price":           map[string]any{"type": "number"},
				},
				"required": []string{"propertyAddress", "price"},
			},
		},
	})
}

func issuedCount() int {
	store.Lock()
	defer store.Unlock()
	n := 0
	for _, creds := range store.byHolder {
		n += len(creds)
	}
	return n
}

func sendError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key, fallback string) int {
	v := getEnv(key, fallback)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 100
	}
	return n
}
