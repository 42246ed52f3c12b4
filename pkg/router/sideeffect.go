package router

import (
	"errors"
	"strconv"

	"github.com/pmaojo/apicentric-sub001/pkg/store"
)

// incrementKey treats the stored value as a decimal counter, starting at
// zero for a missing key.
func incrementKey(kv store.KV, key string) error {
	current, err := kv.Get(key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		current = "0"
	case err != nil:
		return err
	}

	n, err := strconv.ParseInt(current, 10, 64)
	if err != nil {
		return err
	}
	return kv.Set(key, strconv.FormatInt(n+1, 10))
}
