package txn

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated error", errors.New("write conflict"), false},
		{"illegal operation code", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member"}, true},
		{"command not supported code", mongo.CommandError{Code: 51, Message: "Illegal operation"}, true},
		{"operation not supported in transaction code", mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"}, true},
		{"other command error", mongo.CommandError{Code: 11000, Message: "duplicate key"}, false},
		{"replica set message", errors.New("transaction failed: this is not a replica set member"), true},
		{"sessions unsupported message", errors.New("session operations are not supported on this server"), true},
		{"transaction session message", errors.New("cannot start transaction in current session state"), true},
		{"illegal op message", errors.New("illegal operation during transaction"), true},
		{"transaction alone is not enough", errors.New("transaction failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
