package page

import (
	"net/url"
	"strconv"
)

// Links are the navigation URLs of a collection response. Prev and Next are
// empty at the edges.
type Links struct {
	Self  string `json:"self"`
	First string `json:"first"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last"`
}

// BuildLinks renders page links for env on top of base. Existing query
// parameters of base are kept; filter, sort, page and pageSize are replaced.
func BuildLinks[T any](base *url.URL, env Envelope[T]) Links {
	last := max(env.PageCount, 1)
	cur := max(env.Page, 1)

	l := Links{
		Self:  linkTo(base, env, cur),
		First: linkTo(base, env, 1),
		Last:  linkTo(base, env, last),
	}
	if cur > 1 {
		l.Prev = linkTo(base, env, cur-1)
	}
	if cur < last {
		l.Next = linkTo(base, env, cur+1)
	}
	return l
}

func linkTo[T any](base *url.URL, env Envelope[T], p int64) string {
	u := *base
	q := u.Query()
	setOrDel(q, "filter", env.Filter)
	setOrDel(q, "sort", env.Sort)
	q.Set("page", strconv.FormatInt(p, 10))
	q.Set("pageSize", strconv.FormatInt(env.PageSize, 10))
	u.RawQuery = q.Encode()
	return u.String()
}

func setOrDel(q url.Values, key, v string) {
	if v == "" {
		q.Del(key)
		return
	}
	q.Set(key, v)
}
