package vm

// IJournal records how to undo a state change made by a call target.
type IJournal interface {
	OnRevert(func())
}

type revision struct {
	id           int
	journalIndex int
}

// journal is an undo log with nested revisions, in the manner of the
// snapshot journal of go-ethereum's StateDB.
type journal struct {
	entries        []func()
	validRevisions []revision
	nextRevisionID int
}

func (j *journal) append(undo func()) {
	j.entries = append(j.entries, undo)
}

func (j *journal) snapshot() int {
	id := j.nextRevisionID
	j.nextRevisionID++
	j.validRevisions = append(j.validRevisions, revision{id, len(j.entries)})
	return id
}

// revertTo undoes every entry recorded after the revision and
// invalidates the revision and the ones taken after it.
func (j *journal) revertTo(revid int) bool {
	idx := -1
	for i, r := range j.validRevisions {
		if r.id == revid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	snapshot := j.validRevisions[idx].journalIndex
	j.undo(snapshot)
	j.validRevisions = j.validRevisions[:idx]
	return true
}

func (j *journal) undo(to int) {
	for i := len(j.entries) - 1; i >= to; i-- {
		j.entries[i]()
	}
	j.entries = j.entries[:to]
}

func (j *journal) reset() {
	j.entries = nil
	j.validRevisions = nil
}

func (j *journal) length() int {
	return len(j.entries)
}
