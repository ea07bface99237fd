// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package weightpolicy

import (
	"math"
	"sort"

	"github.com/blinklabs-io/shai106/internal/domain"
)

const u16Total = 65535

// Scale converts a hotkey/UID -> float weight map into the on-chain u16
// vector via largest-remainder apportionment with an exact burn
// allocation. burnUID is always present in the output even if absent
// from weights. Iteration order is UID ascending throughout so ties and
// rounding are resolved deterministically.
func Scale(weights map[domain.UID]float64, burnUID domain.UID, burnPercentage float64) domain.SubmissionVector {
	if _, ok := weights[burnUID]; !ok {
		weights[burnUID] = 0
	}

	uids := make([]domain.UID, 0, len(weights))
	for uid := range weights {
		uids = append(uids, uid)
	}
	sortUIDs(uids)

	desiredBurnInt := int(math.Round(burnPercentage / 100 * u16Total))
	minerTotalInt := u16Total - desiredBurnInt

	var nonBurnSum float64
	for _, uid := range uids {
		if uid == burnUID {
			continue
		}
		nonBurnSum += weights[uid]
	}

	type target struct {
		uid   domain.UID
		value float64
		floor int
		rem   float64
	}
	targets := make([]target, 0, len(uids)-1)
	floorSum := 0
	for _, uid := range uids {
		if uid == burnUID {
			continue
		}
		var t float64
		if nonBurnSum > 0 {
			t = weights[uid] / nonBurnSum * float64(minerTotalInt)
		}
		f := int(math.Floor(t))
		targets = append(targets, target{uid: uid, value: t, floor: f, rem: t - float64(f)})
		floorSum += f
	}

	leftover := minerTotalInt - floorSum
	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].rem != targets[j].rem {
			return targets[i].rem > targets[j].rem
		}
		return targets[i].uid < targets[j].uid
	})
	scaled := make(map[domain.UID]int, len(uids))
	for i := range targets {
		scaled[targets[i].uid] = targets[i].floor
		if leftover > 0 {
			scaled[targets[i].uid]++
			leftover--
		}
	}
	scaled[burnUID] = desiredBurnInt

	rectify(scaled, uids, burnUID)

	out := domain.SubmissionVector{UIDs: uids, Weights: make([]uint16, len(uids))}
	for i, uid := range uids {
		out.Weights[i] = uint16(scaled[uid])
	}
	return out
}

// rectify nudges scaled so its total is exactly u16Total, touching
// burnUID last. The largest-remainder step hands out at most one
// leftover unit per non-burn UID, so the total falls short when every
// non-burn weight is zero (all targets 0, the whole miner total left
// over) or when floating-point error leaves more leftover units than
// UIDs.
func rectify(scaled map[domain.UID]int, uids []domain.UID, burnUID domain.UID) {
	var total int
	for _, uid := range uids {
		total += scaled[uid]
	}
	diff := u16Total - total
	if diff == 0 {
		return
	}

	nonBurn := make([]domain.UID, 0, len(uids)-1)
	for _, uid := range uids {
		if uid != burnUID {
			nonBurn = append(nonBurn, uid)
		}
	}
	sort.SliceStable(nonBurn, func(i, j int) bool {
		return scaled[nonBurn[i]] > scaled[nonBurn[j]]
	})

	if len(nonBurn) == 0 {
		scaled[burnUID] += diff
		return
	}

	step := 1
	if diff < 0 {
		step = -1
	}
	for diff != 0 {
		progressed := false
		for _, uid := range nonBurn {
			if diff == 0 {
				break
			}
			if step < 0 && scaled[uid] == 0 {
				continue
			}
			scaled[uid] += step
			diff -= step
			progressed = true
		}
		if !progressed {
			// every non-burn UID is already at 0 and diff is still
			// negative; there is nowhere else to take units from.
			scaled[burnUID] += diff
			return
		}
	}
}

func sortUIDs(uids []domain.UID) {
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
}
