package transfer

import (
	"errors"

	"github.com/kiranshivaraju/mediashelf/internal/transfer/objectstore"
)

var (
	ErrObjectExists         = objectstore.ErrObjectExists
	ErrBridgeRejected       = errors.New("bridge rejected the request")
	ErrSignedURLUnavailable = errors.New("signed url unavailable for bridge-hosted files")
	ErrUnknownScheme        = errors.New("unknown file reference scheme")
	ErrRenameUnsupported    = errors.New("backend does not support renaming")
)
