package firestore

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errNotFound stands in for the gRPC not-found status when a query matches nothing, so
// empty lookups categorise the same way as missing documents.
var errNotFound = status.Error(codes.NotFound, "document not found")
