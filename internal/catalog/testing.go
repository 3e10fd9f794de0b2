package catalog

import "github.com/sirupsen/logrus"

// NewMemory opens an in-memory catalog for testing. Caller must close it.
func NewMemory(storageRoot string, logger *logrus.Logger) (*Backend, error) {
	return OpenBackend(Options{InMemory: true, StorageRoot: storageRoot, Logger: logger})
}
