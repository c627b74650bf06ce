package fixture

type pendingCleanup struct {
	name    string
	cleanup CleanupFunc
}

// instanceState holds the values and cleanups of one setup/teardown cycle.
// A nil values map means the set is not initialized.
type instanceState struct {
	values   Values
	cleanups []pendingCleanup
	order    []string
}

func (s *instanceState) initialized() bool {
	return s.values != nil
}

func (s *instanceState) reset() {
	s.values = nil
	s.cleanups = nil
	s.order = nil
}
