package registry

import "voxelcore/internal/voxel"

// RuleLogic is the combinator applied to a Rule's children.
type RuleLogic int

const (
	LogicAnd RuleLogic = iota
	LogicOr
	LogicNot
)

// SimpleRule compares id, rotation, and stage at an integer offset from the
// voxel under evaluation. A nil field means "don't care" for that dimension.
type SimpleRule struct {
	Offset   [3]int32
	ID       *uint32
	Rotation *voxel.BlockRotation
	Stage    *uint32
}

// Rule is a recursive block-rule tree: a leaf Simple comparison or an
// And/Or/Not combination over child rules. Rule is a tagged variant (via
// the Kind discriminant), not a subclass hierarchy — evaluation is a plain
// recursive switch with short-circuiting.
type Rule struct {
	Kind RuleKind

	Simple *SimpleRule

	Logic RuleLogic
	Rules []Rule
}

// RuleKind discriminates Rule's two shapes.
type RuleKind int

const (
	RuleNone RuleKind = iota
	RuleSimple
	RuleCombination
)

// VoxelReader is the minimal accessor the rule evaluator needs: raw voxel
// lookup at arbitrary (possibly out-of-chunk) coordinates.
type VoxelReader interface {
	GetRawVoxel(vx, vy, vz int32) uint32
}

// Evaluate walks the rule tree at the given voxel position.
func Evaluate(rule Rule, vx, vy, vz int32, r VoxelReader) bool {
	switch rule.Kind {
	case RuleNone:
		return true
	case RuleSimple:
		return evaluateSimple(rule.Simple, vx, vy, vz, r)
	case RuleCombination:
		return evaluateCombination(rule.Logic, rule.Rules, vx, vy, vz, r)
	default:
		return true
	}
}

func evaluateSimple(s *SimpleRule, vx, vy, vz int32, r VoxelReader) bool {
	if s == nil {
		return true
	}
	if s.ID == nil && s.Rotation == nil && s.Stage == nil {
		return true
	}

	if s.Offset != [3]int32{0, 0, 0} {
		nvx := int64(vx) + int64(s.Offset[0])
		nvy := int64(vy) + int64(s.Offset[1])
		nvz := int64(vz) + int64(s.Offset[2])
		if nvx < int64(minInt32) || nvx > int64(maxInt32) ||
			nvy < int64(minInt32) || nvy > int64(maxInt32) ||
			nvz < int64(minInt32) || nvz > int64(maxInt32) {
			return false
		}
		vx, vy, vz = int32(nvx), int32(nvy), int32(nvz)
	}

	raw := r.GetRawVoxel(vx, vy, vz)

	if s.ID != nil && voxel.ExtractID(raw) != *s.ID {
		return false
	}

	if s.Rotation != nil {
		expectedValue, expectedYaw := s.Rotation.Decode()
		if voxel.ExtractRotation(raw) != expectedValue || voxel.ExtractYRotation(raw) != expectedYaw {
			return false
		}
	}

	if s.Stage != nil {
		return voxel.ExtractStage(raw) == *s.Stage
	}

	return true
}

func evaluateCombination(logic RuleLogic, rules []Rule, vx, vy, vz int32, r VoxelReader) bool {
	switch logic {
	case LogicAnd:
		if len(rules) == 0 {
			return true
		}
		if len(rules) == 1 {
			return Evaluate(rules[0], vx, vy, vz, r)
		}
		for _, sub := range rules {
			if !Evaluate(sub, vx, vy, vz, r) {
				return false
			}
		}
		return true
	case LogicOr:
		if len(rules) == 0 {
			return false
		}
		if len(rules) == 1 {
			return Evaluate(rules[0], vx, vy, vz, r)
		}
		for _, sub := range rules {
			if Evaluate(sub, vx, vy, vz, r) {
				return true
			}
		}
		return false
	case LogicNot:
		if len(rules) == 0 {
			return true
		}
		if len(rules) == 1 {
			return !Evaluate(rules[0], vx, vy, vz, r)
		}
		for _, sub := range rules {
			if Evaluate(sub, vx, vy, vz, r) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

const (
	minInt32 = -(1 << 31)
	maxInt32 = (1 << 31) - 1
)
