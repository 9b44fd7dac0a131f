package catalog

// Emission factors in kgCO2e per reported unit.
var builtin = []Category{
	{PageKey: "wd40", Label: "WD-40", Factor: 0.5},
	{PageKey: "acetylene", Label: "乙炔", Factor: 2.9},
	{PageKey: "refrigerant", Label: "冷媒", Factor: 1.0},
	{PageKey: "septic_tank", Label: "化糞池", Factor: 0.0},
	{PageKey: "natural_gas", Label: "天然氣", Factor: 1.8790},
	{PageKey: "urea", Label: "尿素", Factor: 0.732},
	{PageKey: "diesel_generator", Label: "柴油(固定源)", Factor: 2.6068},
	{PageKey: "diesel", Label: "柴油(移動源)", Factor: 2.6068},
	{PageKey: "gasoline", Label: "汽油", Factor: 2.2683},
	{PageKey: "sf6", Label: "六氟化硫", Factor: 22800.0},
	{PageKey: "generator_test", Label: "發電機測試資料", Factor: 2.6068},
	{PageKey: "lpg", Label: "液化石油氣", Factor: 1.7766},
	{PageKey: "fire_extinguisher", Label: "滅火器", Factor: 1.0},
	{PageKey: "welding_rod", Label: "焊條", Factor: 0.8},
	{PageKey: "electricity", Label: "外購電力", Factor: 0.509},
	{PageKey: "employee_commute", Label: "員工通勤", Factor: 0.0},
}
