package app

// maxConflictRetries bounds how often an action is re-run after losing a
// conditional write. A re-run sees the winner's state, so stale actions fail
// on their own guards.
const maxConflictRetries = 3
