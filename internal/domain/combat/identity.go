package combat

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// GenerateBattleID derives the battle identity from the participant set, the
// start time, and the game. Participant ids are sorted before joining, so the
// id is invariant to attacker/defender labeling order. Creation and resolution
// both recompute it from the same inputs, which keeps the two paths linked
// without a lookup table.
func GenerateBattleID(participantIDs []string, startedAt time.Time, gameID string) string {
	ids := make([]string, len(participantIDs))
	copy(ids, participantIDs)
	sort.Strings(ids)

	preimage := "battle-" + strings.Join(ids, "-") + "-" + strconv.FormatInt(startedAt.Unix(), 10) + "-" + gameID
	sum := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:])
}
