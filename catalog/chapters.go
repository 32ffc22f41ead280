package catalog

// chapterDescriptions returns chapter-level fallback descriptions keyed by
// the 2-digit chapter prefix. Used to backfill rows whose merged text is
// empty after integration.
func chapterDescriptions() map[string]string {
	return map[string]string{
		"01": "살아 있는 동물",
		"02": "육과 식용 설육",
		"03": "어류 갑각류 연체동물",
		"04": "낙농품 조란 천연꿀",
		"05": "기타 동물성 생산품",
		"06": "산 수목과 꽃",
		"07": "식용의 채소",
		"08": "식용의 과실과 견과류",
		"09": "커피 차 향신료",
		"10": "곡물",
		"11": "제분공업 생산품",
		"12": "채유용 종자와 과실",
		"13": "식물성 엑스",
		"14": "기타 식물성 생산품",
		"15": "동식물성 유지",
		"16": "육류 어류 조제품",
		"17": "당류와 설탕과자",
		"18": "코코아와 그 조제품",
		"19": "곡물 곡분의 조제품",
		"20": "채소 과실의 조제품",
		"21": "기타 조제 식료품",
		"22": "음료 주류 식초",
		"23": "조제 사료",
		"24": "담배",
		"25": "소금 황 토석류 시멘트",
		"26": "광 슬래그 회",
		"27": "광물성 연료 에너지",
		"28": "무기화학품",
		"29": "유기화학품",
		"30": "의료용품",
		"31": "비료",
		"32": "염료 안료 페인트",
		"33": "향료 화장품",
		"34": "비누 왁스 세제",
		"35": "단백질계 물질 효소",
		"36": "화약류 성냥",
		"37": "사진용 영화용 재료",
		"38": "각종 화학공업 생산품",
		"39": "플라스틱과 그 제품",
		"40": "고무와 그 제품",
		"41": "원피와 가죽",
		"42": "가죽제품 여행용구",
		"43": "모피와 모피제품",
		"44": "목재와 목탄",
		"45": "코르크와 그 제품",
		"46": "조물재료의 제품",
		"47": "펄프",
		"48": "지와 판지",
		"49": "인쇄서적 신문",
		"50": "견",
		"51": "양모 섬수모",
		"52": "면",
		"53": "기타 식물성 방직용 섬유",
		"54": "인조필라멘트",
		"55": "인조스테이플섬유",
		"56": "워딩 부직포 끈",
		"57": "양탄자류",
		"58": "특수직물",
		"59": "침투 도포한 방직용 섬유",
		"60": "메리야스 편물",
		"61": "의류 편물제",
		"62": "의류 편물제 이외",
		"63": "기타 방직용 섬유제품",
		"64": "신발류",
		"65": "모자류",
		"66": "산류 지팡이",
		"67": "조제 우모 인조제품",
		"68": "돌 시멘트 석면의 제품",
		"69": "도자제품",
		"70": "유리와 유리제품",
		"71": "귀석 반귀석 귀금속",
		"72": "철강",
		"73": "철강의 제품",
		"74": "구리와 그 제품",
		"75": "니켈과 그 제품",
		"76": "알루미늄과 그 제품",
		"78": "납과 그 제품",
		"79": "아연과 그 제품",
		"80": "주석과 그 제품",
		"81": "기타 비금속",
		"82": "비금속제 공구 칼붙이",
		"83": "비금속제 각종 제품",
		"84": "기계류와 그 부분품",
		"85": "전기기기 조명 음향기기",
		"86": "철도차량",
		"87": "자동차 일반차량",
		"88": "항공기",
		"89": "선박",
		"90": "광학 의료 측정기기",
		"91": "시계",
		"92": "악기",
		"93": "무기",
		"94": "가구 조명기구",
		"95": "완구 운동용구",
		"96": "잡품",
		"97": "예술품 골동품",
	}
}
