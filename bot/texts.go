package bot

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// WelcomeText is posted when a new member joins and the debounce allows it.
// It is also the reply to /about.
var WelcomeText = strings.TrimSpace(`
안녕하세요! 전국민주일반노조 누구나노조지회 채팅방에 오신것을 환영합니다!
조합비 납부 방법, 계좌번호 등 자주 묻는 질문은 홈페이지를 참조해주세요.
https://everyone-nodong.github.io/
최근 소식은 채팅방 상단 고정된 메시지에서 확인하실 수 있습니다.
`)

var RulesText = strings.TrimSpace(`
우리 모두가 지켜야 할 민주노총 평등수칙입니다.
평등수칙에 대한 자세한 내용은 <a href="https://nodong.org/data_paper/7814605">민주노총 평등수칙 해설서</a>를 참조해주세요.
`)

var QuestionText = strings.TrimSpace(`
지회 운영에 대한 문의 사항이나 불편사항이 있으시다면 제작해둔 <a href="https://forms.gle/ivL5oGqwYV8TVyR76">구글폼</a>, 지회 텔레그램 방(전체, 권역별), 운영위원에게 직접 문의를 부탁드립니다.
`)

var CalendarText = strings.TrimSpace(`
<a href="https://calendar.google.com/calendar/u/0/embed?src=b3c57107d44dd371af3df900c5fa541b603080a33702e1b20a9b85e1b38aef33@group.calendar.google.com&ctz=Asia/Seoul">달력 바로 보기</a>
`)

// Block pairs a text body with the parse mode it was written for.
type Block struct {
	Text      string
	ParseMode tele.ParseMode
}

// sendOptions renders the block's delivery options. All bot messages are
// sent silently so greetings and info replies never ping the whole group.
func (b Block) sendOptions() *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:           b.ParseMode,
		DisableNotification: true,
	}
}
