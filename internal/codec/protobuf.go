package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtobufName selects the protobuf codec.
const ProtobufName = "protobuf"

// Protobuf writes artifacts as a serialized google.protobuf.Struct using
// deterministic marshalling, so map keys are emitted in sorted order.
type Protobuf struct{}

func (Protobuf) Name() string { return ProtobufName }

func (Protobuf) Encode(a Artifact) ([]byte, error) {
	fields := map[string]any{}
	putString(fields, "flag", a.Flag)
	putString(fields, "name", a.Name)
	putString(fields, "avatar", a.Avatar)
	if len(a.Alias) > 0 {
		alias := make([]any, len(a.Alias))
		for i, v := range a.Alias {
			alias[i] = v
		}
		fields["alias"] = alias
	}
	socials := make([]any, len(a.Socials))
	for i, s := range a.Socials {
		entry := map[string]any{}
		putString(entry, "code", s.Code)
		putString(entry, "desc", s.Desc)
		putString(entry, "url", s.URL)
		socials[i] = entry
	}
	fields["socials"] = socials

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build protobuf artifact: %w", err)
	}
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode protobuf artifact: %w", err)
	}
	return data, nil
}

func (Protobuf) Decode(data []byte) (Artifact, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return Artifact{}, fmt.Errorf("decode protobuf artifact: %w", err)
	}
	fields := st.GetFields()
	a := Artifact{
		Flag:    fields["flag"].GetStringValue(),
		Name:    fields["name"].GetStringValue(),
		Avatar:  fields["avatar"].GetStringValue(),
		Socials: []Social{},
	}
	for _, v := range fields["alias"].GetListValue().GetValues() {
		a.Alias = append(a.Alias, v.GetStringValue())
	}
	for _, v := range fields["socials"].GetListValue().GetValues() {
		entry := v.GetStructValue().GetFields()
		a.Socials = append(a.Socials, Social{
			Code: entry["code"].GetStringValue(),
			Desc: entry["desc"].GetStringValue(),
			URL:  entry["url"].GetStringValue(),
		})
	}
	return a, nil
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
