package pairlist

import (
	"context"

	"go.uber.org/zap"

	"pairScope/internal/model"
)

// StaticPairList keeps only whitelisted pairs. An empty whitelist passes everything.
type StaticPairList struct {
	logger    *zap.Logger
	whitelist []string
}

func NewStaticPairList(logger *zap.Logger, whitelist ...string) *StaticPairList {
	return &StaticPairList{logger: nopIfNil(logger), whitelist: cloneStrings(whitelist)}
}

func (f *StaticPairList) Name() string { return MethodStaticPairList }

func (f *StaticPairList) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Strings("whitelist", &f.whitelist)
	return r.Err()
}

// SetWhitelist replaces the configured whitelist.
func (f *StaticPairList) SetWhitelist(whitelist []string) {
	f.whitelist = cloneStrings(whitelist)
}

func (f *StaticPairList) Filter(_ context.Context, pairs []string, _ map[string]model.TickerInfo) []string {
	if len(f.whitelist) == 0 {
		return cloneStrings(pairs)
	}

	allowed := toSet(f.whitelist)
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if _, ok := allowed[pair]; ok {
			out = append(out, pair)
		}
	}

	logResult(f.logger, f.Name(), len(pairs), len(out))
	return out
}

// Blacklist drops configured pairs.
type Blacklist struct {
	logger    *zap.Logger
	blacklist []string
}

func NewBlacklist(logger *zap.Logger, blacklist ...string) *Blacklist {
	return &Blacklist{logger: nopIfNil(logger), blacklist: cloneStrings(blacklist)}
}

func (f *Blacklist) Name() string { return MethodBlacklistFilter }

func (f *Blacklist) Configure(opts Options) error {
	r := newOptionReader(opts)
	r.Strings("blacklist", &f.blacklist)
	return r.Err()
}

// SetBlacklist replaces the configured blacklist.
func (f *Blacklist) SetBlacklist(blacklist []string) {
	f.blacklist = cloneStrings(blacklist)
}

// Add appends a pair to the blacklist.
func (f *Blacklist) Add(pair string) {
	f.blacklist = append(f.blacklist, pair)
}

func (f *Blacklist) Filter(_ context.Context, pairs []string, _ map[string]model.TickerInfo) []string {
	if len(f.blacklist) == 0 {
		return cloneStrings(pairs)
	}

	blocked := toSet(f.blacklist)
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if _, ok := blocked[pair]; ok {
			f.logger.Debug("blacklisted pair removed", zap.String("filter", f.Name()), zap.String("pair", pair))
			continue
		}
		out = append(out, pair)
	}

	logResult(f.logger, f.Name(), len(pairs), len(out), zap.Int("removed", len(pairs)-len(out)))
	return out
}
