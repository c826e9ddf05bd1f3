package acl

// GroupCallPermitted implements the Call Router's ACL gate for group
// calls (spec.md §4.5 step 2): reject if the source RID is
// blacklisted, or if the TGID is not in the active set.
func (t *Tables) GroupCallPermitted(srcRID, tgid uint32) bool {
	if t.Blacklisted(srcRID) {
		return false
	}
	return t.ActiveTGID(tgid)
}

// UnitToUnitPermitted implements the ACL gate for P25 unit-to-unit
// calls: reject if either endpoint is not on the whitelist.
func (t *Tables) UnitToUnitPermitted(srcRID, dstRID uint32) bool {
	if t.Blacklisted(srcRID) {
		return false
	}
	return t.Whitelisted(srcRID) && t.Whitelisted(dstRID)
}
