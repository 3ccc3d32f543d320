package services

import (
	"errors"

	"github.com/dmitrijs2005/vidtube/internal/common"
)

// lookupErr maps a repository error to NotFound(notFound) or Internal(failed).
func lookupErr(err error, notFound, failed string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NotFound(notFound)
	}
	return common.Internal(failed, err)
}
