package worker

import "errors"

var errEmptyPayload = errors.New("payload has no résumé text")
