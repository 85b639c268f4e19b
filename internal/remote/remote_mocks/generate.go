package remote_mocks

//go:generate mockgen -source=../interfaces.go -destination=remote_mocks.go -package=remote_mocks

// This file contains the go:generate directive to generate mocks for the remote interfaces.
// To regenerate the mocks, run:
//   go generate ./internal/remote/remote_mocks
