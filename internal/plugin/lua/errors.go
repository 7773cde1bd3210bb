package lua

import "errors"

var ErrStateClosed = errors.New("lua state is closed")

const errAlreadyWritten = "response already written"
