package intern

// SweepReplica scans both local bimaps, evicting every entry with no
// external references, and returns the tokens that could not be removed
// (still externally referenced somewhere in this process), kept in
// separate string/vector sets since the two bimaps assign tokens from
// independent counters. The caller (the extension's Sweep request
// handler) reports this pair to the master as its Retained response.
func (in *Interner) SweepReplica() (retainedStrings, retainedVectors []uint64) {
	return in.strings.sweepLocal(), in.vectors.sweepLocal()
}

// SweepMaster unions the Retained reports already collected from every
// replica (by the caller, serially or concurrently; only the combined
// sets matter here) and evicts every master-side entry that has no
// external references of its own and whose token is absent from that
// union. Because every replica has already purged what it no longer
// needs before reporting, this decision is safe, preserving the
// invariant that the master never evicts a token a replica still holds.
func (in *Interner) SweepMaster(retainedStrings, retainedVectors []uint64) (evictedStrings, evictedVectors []uint64) {
	strSet := make(map[uint64]bool, len(retainedStrings))
	for _, t := range retainedStrings {
		strSet[t] = true
	}
	vecSet := make(map[uint64]bool, len(retainedVectors))
	for _, t := range retainedVectors {
		vecSet[t] = true
	}
	return in.strings.sweepMaster(strSet), in.vectors.sweepMaster(vecSet)
}
