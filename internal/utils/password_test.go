package utils

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3nh4-forte", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3nh4-forte" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifyPassword(hash, "s3nh4-forte") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "outra-senha") {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordClampsBadCost(t *testing.T) {
	hash, err := HashPassword("s3nh4-forte", 0)
	if err != nil {
		t.Fatalf("HashPassword with cost 0: %v", err)
	}
	if !VerifyPassword(hash, "s3nh4-forte") {
		t.Fatal("clamped-cost hash does not verify")
	}

	hash, err = HashPassword("s3nh4-forte", 99)
	if err != nil {
		t.Fatalf("HashPassword with cost 99: %v", err)
	}
	if !VerifyPassword(hash, "s3nh4-forte") {
		t.Fatal("clamped-cost hash does not verify")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "qualquer") {
		t.Fatal("garbage hash accepted")
	}
}
