package search

// Category groups synonym keywords with the chapters and headings they make
// more likely, plus negative keywords that demote lookalike rows.
type Category struct {
	Name             string
	Keywords         []string
	BoostChapters    []string
	BoostHeadings    []string
	NegativeKeywords []string
}

// DefaultCategories returns the built-in synonym/category dictionary in its
// fixed iteration order. Query expansion applies the FIRST matching
// category only; order is part of the contract.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:             "조명기기",
			Keywords:         []string{"led", "전구", "램프", "조명", "등기구", "형광등", "lamp", "bulb", "light", "lighting"},
			BoostChapters:    []string{"85", "94"},
			BoostHeadings:    []string{"8539", "9405"},
			NegativeKeywords: []string{"완구", "장난감"},
		},
		{
			Name:             "전자기기",
			Keywords:         []string{"스마트폰", "휴대폰", "노트북", "컴퓨터", "모니터", "태블릿", "phone", "laptop", "computer", "monitor"},
			BoostChapters:    []string{"84", "85"},
			BoostHeadings:    []string{"8471", "8517", "8528"},
			NegativeKeywords: []string{"케이스", "거치대"},
		},
		{
			Name:          "의류",
			Keywords:      []string{"셔츠", "바지", "자켓", "코트", "티셔츠", "의류", "옷", "shirt", "jacket", "trousers", "apparel"},
			BoostChapters: []string{"61", "62"},
			BoostHeadings: []string{"6109", "6203"},
		},
		{
			Name:             "신발",
			Keywords:         []string{"신발", "운동화", "구두", "부츠", "슬리퍼", "shoes", "sneakers", "boots", "footwear"},
			BoostChapters:    []string{"64"},
			BoostHeadings:    []string{"6403", "6404"},
			NegativeKeywords: []string{"부분품"},
		},
		{
			Name:          "화장품",
			Keywords:      []string{"화장품", "크림", "로션", "립스틱", "선크림", "세럼", "cosmetic", "cream", "lotion", "makeup"},
			BoostChapters: []string{"33"},
			BoostHeadings: []string{"3304"},
		},
		{
			Name:          "식품",
			Keywords:      []string{"과자", "초콜릿", "음료", "커피", "라면", "식품", "간식", "snack", "chocolate", "beverage", "coffee"},
			BoostChapters: []string{"17", "18", "19", "21", "22"},
			BoostHeadings: []string{"1806", "1905", "2202"},
		},
		{
			Name:             "완구",
			Keywords:         []string{"완구", "장난감", "인형", "블록", "보드게임", "toy", "doll", "puzzle", "game"},
			BoostChapters:    []string{"95"},
			BoostHeadings:    []string{"9503", "9504"},
			NegativeKeywords: []string{"수집용"},
		},
		{
			Name:          "가구",
			Keywords:      []string{"가구", "의자", "책상", "테이블", "소파", "침대", "furniture", "chair", "desk", "sofa"},
			BoostChapters: []string{"94"},
			BoostHeadings: []string{"9401", "9403"},
		},
		{
			Name:          "플라스틱제품",
			Keywords:      []string{"플라스틱", "수지", "비닐", "plastic", "polymer", "resin"},
			BoostChapters: []string{"39"},
			BoostHeadings: []string{"3923", "3926"},
		},
		{
			Name:          "기계류",
			Keywords:      []string{"기계", "펌프", "밸브", "베어링", "모터", "엔진", "machine", "pump", "valve", "motor", "engine"},
			BoostChapters: []string{"84"},
			BoostHeadings: []string{"8413", "8481", "8501"},
		},
	}
}
