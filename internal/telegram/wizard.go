package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"family-meal-planner/internal/family"

	"github.com/google/uuid"
)

// Wizard states, stored in the session row. The sequence mirrors the
// product's multi-step onboarding: members first, then household constraints,
// then cooking habits, then generation.
const (
	StateRole        = "role"
	StateGender      = "gender"
	StateAge         = "age"
	StateGoals       = "goals"
	StateTastes      = "tastes"
	StateMemberDone  = "member_done"
	StateAllergies   = "allergies"
	StateDislikes    = "dislikes"
	StateTimeLimit   = "time_limit"
	StateSkill       = "skill"
	StateTable       = "table"
	StateReady       = "ready"
	StateGenerating  = "generating"
)

const tastesPrompt = "这位成员的口味偏好？(逗号分隔，如 清淡,微辣；没有请回复 无)"

// WizardData is the payload carried across wizard turns.
type WizardData struct {
	Members     []family.Member    `json:"members"`
	Constraints family.Constraints `json:"constraints"`
	Habits      family.Habits      `json:"habits"`
	// Current is the member being filled in by the role→tastes sub-flow.
	Current *family.Member `json:"current,omitempty"`
	// PlanID is set once a plan has been generated and stored.
	PlanID int64 `json:"planId,omitempty"`
	// ExcludeIDs accumulates imported-dish ids to bias generation away from.
	ExcludeIDs []string `json:"excludeIds,omitempty"`
}

var allRoles = []family.Role{
	family.RoleSelf, family.RolePartner, family.RoleDad, family.RoleMom,
	family.RoleChild, family.RoleInlawDad, family.RoleInlawMom,
	family.RoleGrandpa, family.RoleGrandma, family.RoleOther,
}

var allAgeGroups = []family.AgeGroup{
	family.AgeBaby0to6, family.AgeToddler6to24, family.AgeToddler2to3,
	family.AgePreschool3to6, family.AgeSchool6to12, family.AgeTeen12to18,
}

// Advance feeds one user message into the wizard and returns the next state
// and the reply to send. It is a pure transition function over WizardData so
// the whole flow is testable without the Telegram API.
func Advance(state string, data *WizardData, input string) (nextState, reply string) {
	input = strings.TrimSpace(input)

	switch state {
	case StateRole:
		role, ok := parseRole(input)
		if !ok {
			return StateRole, "请选择一个成员角色：" + joinRoles()
		}
		data.Current = &family.Member{ID: uuid.NewString(), Role: role}
		if role == family.RoleChild {
			return StateAge, "孩子的年龄段？" + joinAgeGroups()
		}
		return StateGender, "这位成员的性别？(男/女)"

	case StateGender:
		switch input {
		case "男":
			data.Current.Gender = family.Male
		case "女":
			data.Current.Gender = family.Female
		default:
			return StateGender, "请回复 男 或 女"
		}
		return StateGoals, goalsPrompt(data.Current)

	case StateAge:
		age, ok := parseAgeGroup(input)
		if !ok {
			return StateAge, "请选择一个年龄段：" + joinAgeGroups()
		}
		data.Current.AgeGroup = age
		// Nursing infants have no goal vocabulary; skip straight to tastes.
		if len(family.GoalsFor(data.Current.Role, data.Current.Gender, age)) == 0 {
			return StateTastes, tastesPrompt
		}
		return StateGoals, goalsPrompt(data.Current)

	case StateGoals:
		if input != "无" {
			valid := family.GoalsFor(data.Current.Role, data.Current.Gender, data.Current.AgeGroup)
			for _, part := range splitList(input) {
				for _, g := range valid {
					if string(g) == part {
						data.Current.Goals = append(data.Current.Goals, g)
						break
					}
				}
			}
		}
		return StateTastes, tastesPrompt

	case StateTastes:
		if input != "无" {
			data.Current.Tastes = splitList(input)
		}
		data.Members = append(data.Members, *data.Current)
		data.Current = nil
		return StateMemberDone, fmt.Sprintf("已添加 %d 位成员。继续添加请回复 添加，完成请回复 完成。", len(data.Members))

	case StateMemberDone:
		switch input {
		case "添加":
			return StateRole, "下一位成员的角色？" + joinRoles()
		case "完成":
			if len(data.Members) == 0 {
				return StateRole, "还没有成员，请先添加：" + joinRoles()
			}
			return StateAllergies, "全家有忌口或过敏的食材吗？(逗号分隔；没有请回复 无)"
		default:
			return StateMemberDone, "请回复 添加 或 完成"
		}

	case StateAllergies:
		if input != "无" {
			data.Constraints.Allergies = splitList(input)
		}
		return StateDislikes, "有特别不爱吃的食材吗？(逗号分隔；没有请回复 无)"

	case StateDislikes:
		if input != "无" {
			data.Constraints.Dislikes = splitList(input)
		}
		return StateTimeLimit, "每餐做饭时间预算（分钟）？"

	case StateTimeLimit:
		minutes, err := strconv.Atoi(input)
		if err != nil || minutes <= 0 {
			return StateTimeLimit, "请输入一个正整数（分钟）"
		}
		data.Habits.TimeLimitMinutes = minutes
		return StateSkill, fmt.Sprintf("掌勺人的厨艺水平？(%s/%s/%s)",
			family.SkillBeginner, family.SkillHomeCook, family.SkillPro)

	case StateSkill:
		switch family.SkillLevel(input) {
		case family.SkillBeginner, family.SkillHomeCook, family.SkillPro:
			data.Habits.SkillLevel = family.SkillLevel(input)
		default:
			return StateSkill, fmt.Sprintf("请回复 %s、%s 或 %s",
				family.SkillBeginner, family.SkillHomeCook, family.SkillPro)
		}
		return StateTable, fmt.Sprintf("用餐方式？(%s/%s)", family.TableShared, family.TableSeparate)

	case StateTable:
		switch family.TableFormat(input) {
		case family.TableShared, family.TableSeparate:
			data.Habits.TableFormat = family.TableFormat(input)
		default:
			return StateTable, fmt.Sprintf("请回复 %s 或 %s", family.TableShared, family.TableSeparate)
		}
		return StateReady, "资料齐了！回复 生成 开始定制全家菜谱方案。"

	default:
		return state, "请回复 生成，或 /cancel 重来。"
	}
}

func parseRole(input string) (family.Role, bool) {
	for _, r := range allRoles {
		if string(r) == input {
			return r, true
		}
	}
	return "", false
}

func parseAgeGroup(input string) (family.AgeGroup, bool) {
	for _, a := range allAgeGroups {
		if string(a) == input {
			return a, true
		}
	}
	return "", false
}

func goalsPrompt(m *family.Member) string {
	goals := family.GoalsFor(m.Role, m.Gender, m.AgeGroup)
	names := make([]string, len(goals))
	for i, g := range goals {
		names[i] = string(g)
	}
	return "这位成员的饮食目标？(逗号分隔，可选：" + strings.Join(names, "、") + "；没有请回复 无)"
}

func joinRoles() string {
	names := make([]string, len(allRoles))
	for i, r := range allRoles {
		names[i] = string(r)
	}
	return strings.Join(names, "、")
}

func joinAgeGroups() string {
	names := make([]string, len(allAgeGroups))
	for i, a := range allAgeGroups {
		names[i] = string(a)
	}
	return strings.Join(names, "、")
}

func splitList(input string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '，' || r == '、'
	}) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
