package attr

// RegistryStats is a snapshot of the attributes held by a Registry.
type RegistryStats struct {
	AttributeCount int
	TotalValues    int
	Attributes     []AttributeStats
}

// AttributeStats describes a single attribute.
type AttributeStats struct {
	Name        string
	Type        string
	Values      int
	HighWater   int
	LiveHandles int
}

// Stats returns statistics about the registered attributes, ordered by name.
func (r *Registry) Stats() *RegistryStats {
	names := r.Enumerate()
	stats := &RegistryStats{
		AttributeCount: len(names),
		Attributes:     make([]AttributeStats, len(names)),
	}

	var total int
	for i, name := range names {
		s := r.stores[name]
		stats.Attributes[i] = AttributeStats{
			Name:        name,
			Type:        s.Type().String(),
			Values:      s.Len(),
			HighWater:   s.HighWater(),
			LiveHandles: s.LiveHandles(),
		}
		total += s.Len()
	}

	stats.TotalValues = total
	return stats
}
