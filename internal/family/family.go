package family

// Role identifies a household member's relationship to the account holder.
type Role string

const (
	RoleSelf     Role = "自己"
	RolePartner  Role = "伴侣"
	RoleDad      Role = "爸爸"
	RoleMom      Role = "妈妈"
	RoleChild    Role = "宝宝/孩子"
	RoleInlawDad Role = "公公/岳父"
	RoleInlawMom Role = "婆婆/岳母"
	RoleGrandpa  Role = "爷爷/外公"
	RoleGrandma  Role = "奶奶/外婆"
	RoleOther    Role = "其他成员"
)

// Gender of a member; gates the special-period goal vocabulary.
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// AgeGroup applies to child members only.
type AgeGroup string

const (
	AgeBaby0to6      AgeGroup = "0-6个月"
	AgeToddler6to24  AgeGroup = "6-24个月"
	AgeToddler2to3   AgeGroup = "2-3岁"
	AgePreschool3to6 AgeGroup = "3-6岁"
	AgeSchool6to12   AgeGroup = "6-12岁"
	AgeTeen12to18    AgeGroup = "12-18岁"
)

// Goal is a declared dietary goal for one member.
type Goal string

const (
	// Self / partner
	GoalWeightMuscle Goal = "减脂增肌"
	GoalWorkRecovery Goal = "加班恢复"
	GoalLowCarb      Goal = "低碳水"
	GoalComplexion   Goal = "提升气色"
	GoalAntiFatigue  Goal = "抗疲劳"
	GoalAcne         Goal = "痘痘肌"
	GoalSleep        Goal = "睡眠问题"
	GoalAntiAging    Goal = "抗氧抗衰"
	GoalGut          Goal = "肠胃问题"
	GoalLiver        Goal = "肝脏问题"
	GoalThreeHighs   Goal = "预防三高"

	// Special period (female only)
	GoalPrepPregnancy Goal = "备孕"
	GoalPregnancy     Goal = "孕期"
	GoalPostpartum    Goal = "月子期"
	GoalLactation     Goal = "哺乳期"

	// Child
	GoalSolidFood     Goal = "辅食"
	GoalGrowth        Goal = "成长营养"
	GoalDigestion     Goal = "积食调理"
	GoalIronAnemia    Goal = "补铁防贫"
	GoalBrain         Goal = "大脑发育"
	GoalImmunity      Goal = "提升免疫力"
	GoalHeight        Goal = "长高营养"
	GoalPicky         Goal = "改善挑食"
	GoalEye           Goal = "视力保护"
	GoalWeightControl Goal = "预防肥胖"

	// Elders
	GoalBloodSugar Goal = "控糖"
	GoalBloodLipid Goal = "降脂"
	GoalBone       Goal = "强健骨骼"
	GoalNutrition  Goal = "营养补充"
	GoalTeeth      Goal = "护齿易嚼"
	GoalNerve      Goal = "营养神经"
	GoalHeartBrain Goal = "心脑血管"
)

// Member describes one household member's dietary profile.
type Member struct {
	ID           string   `json:"id"`
	Role         Role     `json:"role"`
	Gender       Gender   `json:"gender"`
	AgeGroup     AgeGroup `json:"ageGroup,omitempty"`
	Name         string   `json:"name,omitempty"`
	Goals        []Goal   `json:"goals"`
	Tastes       []string `json:"tastes"`
	Restrictions []string `json:"restrictions,omitempty"`
	CustomNeeds  string   `json:"customNeeds,omitempty"`
}

// Constraints are household-wide hard limits.
type Constraints struct {
	Allergies []string `json:"allergies"`
	Dislikes  []string `json:"dislikes"`
}

// SkillLevel of the assigned cook.
type SkillLevel string

const (
	SkillBeginner SkillLevel = "厨房小白"
	SkillHomeCook SkillLevel = "家常好手"
	SkillPro      SkillLevel = "专业大厨"
)

// TableFormat describes how meals are served.
type TableFormat string

const (
	TableShared   TableFormat = "合餐制"
	TableSeparate TableFormat = "分餐制"
)

// Habits captures how the household actually cooks.
type Habits struct {
	TimeLimitMinutes int         `json:"timeLimit"`
	ChefID           string      `json:"chefId,omitempty"`
	SkillLevel       SkillLevel  `json:"skillLevel"`
	TableFormat      TableFormat `json:"tableFormat"`
}

var (
	selfPartnerGoals = []Goal{
		GoalWeightMuscle, GoalWorkRecovery, GoalLowCarb, GoalComplexion,
		GoalAntiFatigue, GoalAcne, GoalSleep, GoalAntiAging, GoalGut,
		GoalLiver, GoalThreeHighs,
	}
	specialPeriodGoals = []Goal{
		GoalPrepPregnancy, GoalPregnancy, GoalPostpartum, GoalLactation,
	}
	toddlerGoals = []Goal{
		GoalGrowth, GoalDigestion, GoalIronAnemia, GoalBrain, GoalImmunity,
	}
	olderChildGoals = []Goal{
		GoalHeight, GoalPicky, GoalEye, GoalDigestion, GoalIronAnemia,
		GoalBrain, GoalImmunity, GoalWeightControl,
	}
	elderGoals = []Goal{
		GoalGut, GoalBloodSugar, GoalBloodLipid, GoalBone, GoalNutrition,
		GoalTeeth, GoalNerve, GoalHeartBrain,
	}
)

// GoalsFor returns the goal vocabulary valid for a member. Role and gender
// jointly gate the options; child options depend on the age group. Nursing
// infants have no selectable goals, and 6-24 month olds only 辅食. The
// special-period group is offered to female self/partner members only;
// RoleOther gets the combined adult and elder vocabulary.
func GoalsFor(role Role, gender Gender, age AgeGroup) []Goal {
	switch role {
	case RoleChild:
		switch age {
		case AgeBaby0to6:
			return []Goal{}
		case AgeToddler6to24:
			return []Goal{GoalSolidFood}
		case AgeToddler2to3:
			return append([]Goal{}, toddlerGoals...)
		case AgePreschool3to6, AgeSchool6to12, AgeTeen12to18:
			return append([]Goal{}, olderChildGoals...)
		default:
			return []Goal{}
		}
	case RoleSelf, RolePartner:
		goals := append([]Goal{}, selfPartnerGoals...)
		if gender == Female {
			goals = append(goals, specialPeriodGoals...)
		}
		return goals
	case RoleDad, RoleMom, RoleInlawDad, RoleInlawMom, RoleGrandpa, RoleGrandma:
		return append([]Goal{}, elderGoals...)
	default:
		goals := append([]Goal{}, selfPartnerGoals...)
		return append(goals, elderGoals...)
	}
}
