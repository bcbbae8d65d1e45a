package catalog

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrCategoryNotFound = errors.New("category not found")
var ErrOptimisticLock = errors.New("optimistic lock error: the record has been modified by another transaction")
var ErrAccessDenied = errors.New("access denied")
