package provision

import (
	"reflect"
	"testing"
)

func TestUnwrapCredentialsStripsPrefix(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"ACME_ENV_CF_Token=secret-token",
		"ACME_ENV_MYDNS_API_KEY=abc123",
		"ACME_ENVX_NOT_MINE=1",
	}

	credentials, rejected := UnwrapCredentials(environ, CredentialPrefix)

	want := map[string]string{
		"CF_Token":      "secret-token",
		"MYDNS_API_KEY": "abc123",
	}
	if !reflect.DeepEqual(credentials, want) {
		t.Fatalf("credentials = %v, want %v", credentials, want)
	}
	if len(rejected) != 0 {
		t.Fatalf("unexpected rejections: %v", rejected)
	}
}

func TestUnwrapCredentialsRejectsInvalidBareNames(t *testing.T) {
	environ := []string{
		"ACME_ENV_9LEADING=x",
		"ACME_ENV_WITH-HYPHEN=x",
		"ACME_ENV_=empty-name",
		"ACME_ENV_Valid_1=ok",
	}

	credentials, rejected := UnwrapCredentials(environ, CredentialPrefix)

	if _, ok := credentials["Valid_1"]; !ok || len(credentials) != 1 {
		t.Fatalf("expected only Valid_1 to survive, got %v", credentials)
	}
	wantRejected := []string{"", "9LEADING", "WITH-HYPHEN"}
	if !reflect.DeepEqual(rejected, wantRejected) {
		t.Fatalf("rejected = %v, want %v", rejected, wantRejected)
	}
}

func TestUnwrapCredentialsValueMayContainEquals(t *testing.T) {
	credentials, _ := UnwrapCredentials([]string{"ACME_ENV_TOKEN=a=b=c"}, CredentialPrefix)
	if credentials["TOKEN"] != "a=b=c" {
		t.Fatalf("value split incorrectly: %q", credentials["TOKEN"])
	}
}
