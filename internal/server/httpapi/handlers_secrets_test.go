package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndanilenko/passvault/internal/common"
	"github.com/ndanilenko/passvault/internal/server/models"
)

func testSecret(accountID int64) *models.Secret {
	now := time.Now()
	return &models.Secret{
		ID:         uuid.New(),
		AccountID:  accountID,
		Kind:       "credentials",
		Ciphertext: []byte("ct"),
		Nonce:      []byte("n"),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestSecrets_List(t *testing.T) {
	f := newFixture(t)
	f.secrets.listOut = []*models.Secret{testSecret(f.account.ID), testSecret(f.account.ID)}

	rec := doRequest(t, f.handler, http.MethodGet, "/api/secrets", common.BearerSchemePrefix+f.accessToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %q", rec.Code, rec.Body.String())
	}

	var out []secretResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].Kind != "credentials" {
		t.Fatalf("unexpected list: %+v", out)
	}
}

func TestSecrets_Create(t *testing.T) {
	f := newFixture(t)
	f.secrets.createOut = testSecret(f.account.ID)

	rec := doRequest(t, f.handler, http.MethodPost, "/api/secrets", common.BearerSchemePrefix+f.accessToken(t),
		secretRequest{Kind: "credentials", Ciphertext: []byte("ct"), Nonce: []byte("n")})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %q", rec.Code, rec.Body.String())
	}

	var out secretResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != f.secrets.createOut.ID.String() || out.Version != 1 {
		t.Fatalf("unexpected secret: %+v", out)
	}
}

func TestSecrets_CreateValidation(t *testing.T) {
	f := newFixture(t)

	rec := doRequest(t, f.handler, http.MethodPost, "/api/secrets", common.BearerSchemePrefix+f.accessToken(t),
		secretRequest{Kind: "credentials"})
	wantRejection(t, rec, http.StatusBadRequest, "kind and ciphertext are required")
}

func TestSecrets_GetNotFound(t *testing.T) {
	f := newFixture(t)
	f.secrets.err = common.ErrorNotFound

	rec := doRequest(t, f.handler, http.MethodGet, "/api/secrets/"+uuid.NewString(),
		common.BearerSchemePrefix+f.accessToken(t), nil)
	wantRejection(t, rec, http.StatusNotFound, "secret not found")
}

func TestSecrets_MalformedID(t *testing.T) {
	f := newFixture(t)

	rec := doRequest(t, f.handler, http.MethodGet, "/api/secrets/not-a-uuid",
		common.BearerSchemePrefix+f.accessToken(t), nil)
	wantRejection(t, rec, http.StatusNotFound, "secret not found")
}

func TestSecrets_Delete(t *testing.T) {
	f := newFixture(t)

	rec := doRequest(t, f.handler, http.MethodDelete, "/api/secrets/"+uuid.NewString(),
		common.BearerSchemePrefix+f.accessToken(t), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, body %q", rec.Code, rec.Body.String())
	}
}

func TestSecrets_Update(t *testing.T) {
	f := newFixture(t)

	rec := doRequest(t, f.handler, http.MethodPut, "/api/secrets/"+uuid.NewString(),
		common.BearerSchemePrefix+f.accessToken(t),
		secretRequest{Kind: "note", Ciphertext: []byte("ct2"), Nonce: []byte("n2")})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %q", rec.Code, rec.Body.String())
	}
}

func TestAttachment_UploadURL(t *testing.T) {
	f := newFixture(t)
	f.secrets.uploadURL = "http://example.com/put/key"

	rec := doRequest(t, f.handler, http.MethodPost, "/api/secrets/"+uuid.NewString()+"/attachment",
		common.BearerSchemePrefix+f.accessToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %q", rec.Code, rec.Body.String())
	}

	var out presignedURLResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.URL != f.secrets.uploadURL {
		t.Fatalf("unexpected url: %q", out.URL)
	}
}

func TestAttachment_DownloadNotFound(t *testing.T) {
	f := newFixture(t)
	f.secrets.err = common.ErrorNotFound

	rec := doRequest(t, f.handler, http.MethodGet, "/api/secrets/"+uuid.NewString()+"/attachment",
		common.BearerSchemePrefix+f.accessToken(t), nil)
	wantRejection(t, rec, http.StatusNotFound, "attachment not found")
}

func TestAttachment_Uploaded(t *testing.T) {
	f := newFixture(t)

	rec := doRequest(t, f.handler, http.MethodPost, "/api/secrets/"+uuid.NewString()+"/attachment/uploaded",
		common.BearerSchemePrefix+f.accessToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %q", rec.Code, rec.Body.String())
	}
}
