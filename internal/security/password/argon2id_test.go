package password

import (
	"strings"
	"testing"
)

// Parámetros chicos para que los tests no quemen CPU.
var testParams = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashAndVerify(t *testing.T) {
	phc, err := Hash(testParams, "s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("unexpected PHC format: %s", phc)
	}
	if !Verify("s3cret", phc) {
		t.Fatal("correct password must verify")
	}
	if Verify("wrong", phc) {
		t.Fatal("wrong password must not verify")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	a, _ := Hash(testParams, "same")
	b, _ := Hash(testParams, "same")
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(testParams, ""); err == nil {
		t.Fatal("empty password must be rejected")
	}
}

func TestVerify_MalformedHashes(t *testing.T) {
	bad := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=19$m=1024$c2FsdA$ZGs",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$ZGs",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$!!!",
	}
	for _, phc := range bad {
		if Verify("whatever", phc) {
			t.Fatalf("malformed hash must never verify: %q", phc)
		}
	}
}
