package server

import (
	"strconv"
	"time"
)

const chatStyles = `
.msg { margin: .6rem 0; padding: .6rem .8rem; border-radius: .6rem; max-width: 85%; }
.msg-system { background: #f1f3f5; }
.msg-user { background: #d0ebff; margin-left: auto; text-align: right; }
.msg p { margin: .2rem 0; }
form.answer { margin-top: 1rem; }
form.answer label { display: block; margin: .3rem 0; }
.thinking { color: #52606d; font-style: italic; }
.actions { margin-top: 1rem; display: flex; gap: .6rem; }
`

// refreshSeconds is the meta refresh interval, at least one second.
func refreshSeconds(refresh time.Duration) string {
	return strconv.Itoa(max(int(refresh/time.Second), 1))
}
