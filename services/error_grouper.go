package services

import "ymctelemetry/models"

// errorTypeLength 그룹의 error_types에 들어가는 메시지 서명 길이
const errorTypeLength = 50

// GroupErrors 최신순으로 정렬된 에러 행을 설치 ID + 시간 근접성 기준으로 묶습니다.
//
// 순수 함수이며 입력이 같으면 항상 같은 순서의 같은 그룹을 반환합니다.
// 규칙:
//   - installation_id가 빈 문자열이면 항상 독립 그룹 (익명 에러는 상관관계 판단 불가)
//   - 같은 installation_id의 기존 그룹 중 latest_timestamp가 windowSeconds 이내인
//     첫 번째(가장 먼저 생성된) 그룹에 합류. best-fit이 아닌 first-match입니다.
//   - 매칭 그룹이 없으면 해당 행을 primary로 새 그룹 생성
//
// 반환 순서는 그룹 생성 순서입니다. 입력이 최신순이므로 대략 첫 발견 시점의
// 최신순이 되며, 엄밀한 정렬은 아닙니다. 제한(limit) 절단은 호출자가 그룹핑
// 이후에 수행해야 하므로 원본 행을 넉넉히(4배) 가져와야 합니다.
func GroupErrors(errors []models.ErrorRow, windowSeconds int64) []models.ErrorGroup {
	groups := []models.ErrorGroup{}

	for _, row := range errors {
		if row.InstallationID == "" {
			groups = append(groups, newErrorGroup(row))
			continue
		}

		merged := false
		for i := range groups {
			if groups[i].InstallationID != row.InstallationID {
				continue
			}

			diff := groups[i].LatestTimestamp - row.Timestamp
			if diff < 0 {
				diff = -diff
			}
			if diff > windowSeconds {
				continue
			}

			g := &groups[i]
			g.GroupedErrors = append(g.GroupedErrors, row)
			g.Count++
			if row.Timestamp > g.LatestTimestamp {
				g.LatestTimestamp = row.Timestamp
			}
			if row.Timestamp < g.EarliestTimestamp {
				g.EarliestTimestamp = row.Timestamp
			}
			addErrorType(g, row.ErrorMessage)

			merged = true
			break
		}

		if !merged {
			groups = append(groups, newErrorGroup(row))
		}
	}

	return groups
}

// newErrorGroup 행 하나짜리 새 그룹을 만듭니다.
// error_types는 생성 시점에 primary의 서명으로 시딩합니다. 원본 구현은 두 번째
// 행이 합류할 때만 서명을 채워 단독 그룹의 error_types가 비는 비일관성이
// 있었는데, 여기서는 항상 채우는 쪽으로 통일했습니다.
func newErrorGroup(row models.ErrorRow) models.ErrorGroup {
	return models.ErrorGroup{
		PrimaryError:      row,
		InstallationID:    row.InstallationID,
		Count:             1,
		EarliestTimestamp: row.Timestamp,
		LatestTimestamp:   row.Timestamp,
		ErrorTypes:        []string{truncate(row.ErrorMessage, errorTypeLength)},
		GroupedErrors:     []models.ErrorRow{},
	}
}

// addErrorType 중복 없이 메시지 서명을 추가합니다.
func addErrorType(g *models.ErrorGroup, message string) {
	signature := truncate(message, errorTypeLength)
	for _, existing := range g.ErrorTypes {
		if existing == signature {
			return
		}
	}
	g.ErrorTypes = append(g.ErrorTypes, signature)
}
