package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FakeAPI is an in-memory stand-in for DynamoDB that understands the
// expressions Store issues.
type FakeAPI struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// BeforeTransact runs before each TransactWriteItems evaluates conditions.
	BeforeTransact func(f *FakeAPI)

	// TransactCalls counts TransactWriteItems invocations.
	TransactCalls int
}

var _ API = (*FakeAPI)(nil)

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{tables: make(map[string]map[string]map[string]types.AttributeValue)}
}

// Item returns a copy of the stored item, or nil.
func (f *FakeAPI) Item(table, pk string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyItem(f.tables[table][pk])
}

// SetAttr overwrites one attribute of a stored item.
// Callers inside BeforeTransact already hold the lock.
func (f *FakeAPI) SetAttr(table, pk, name string, v types.AttributeValue) {
	f.tables[table][pk][name] = v
}

// Len returns the number of items in table.
func (f *FakeAPI) Len(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

func (f *FakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: copyItem(f.tables[aws.ToString(in.TableName)][pkValue(in.Key)])}, nil
}

func (f *FakeAPI) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TransactCalls++

	if f.BeforeTransact != nil {
		f.BeforeTransact(f)
	}

	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, item := range in.TransactItems {
		table, pk, cond, names, values := describe(item)
		code := "None"
		if cond != "" && !checkCondition(cond, f.tables[table][pk], names, values) {
			code = "ConditionalCheckFailed"
			failed = true
		}
		reasons[i] = types.CancellationReason{Code: aws.String(code)}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, item := range in.TransactItems {
		if err := f.apply(item); err != nil {
			return nil, err
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *FakeAPI) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := f.tables[name]
	if !ok {
		t = make(map[string]map[string]types.AttributeValue)
		f.tables[name] = t
	}
	return t
}

func (f *FakeAPI) apply(item types.TransactWriteItem) error {
	switch {
	case item.Put != nil:
		f.table(aws.ToString(item.Put.TableName))[pkValue(item.Put.Item)] = copyItem(item.Put.Item)
	case item.Delete != nil:
		delete(f.table(aws.ToString(item.Delete.TableName)), pkValue(item.Delete.Key))
	case item.Update != nil:
		u := item.Update
		t := f.table(aws.ToString(u.TableName))
		pk := pkValue(u.Key)
		cur, ok := t[pk]
		if !ok {
			cur = copyItem(u.Key)
			t[pk] = cur
		}
		return applyUpdate(cur, aws.ToString(u.UpdateExpression), u.ExpressionAttributeNames, u.ExpressionAttributeValues)
	}
	return nil
}

func describe(item types.TransactWriteItem) (table, pk, cond string, names map[string]string, values map[string]types.AttributeValue) {
	switch {
	case item.Put != nil:
		return aws.ToString(item.Put.TableName), pkValue(item.Put.Item), aws.ToString(item.Put.ConditionExpression),
			item.Put.ExpressionAttributeNames, item.Put.ExpressionAttributeValues
	case item.Delete != nil:
		return aws.ToString(item.Delete.TableName), pkValue(item.Delete.Key), aws.ToString(item.Delete.ConditionExpression),
			item.Delete.ExpressionAttributeNames, item.Delete.ExpressionAttributeValues
	case item.Update != nil:
		return aws.ToString(item.Update.TableName), pkValue(item.Update.Key), aws.ToString(item.Update.ConditionExpression),
			item.Update.ExpressionAttributeNames, item.Update.ExpressionAttributeValues
	}
	return "", "", "", nil, nil
}

func checkCondition(cond string, cur map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) bool {
	switch {
	case cond == "attribute_not_exists(pk)":
		return cur == nil
	case strings.Contains(cond, " = "):
		parts := strings.SplitN(cond, " = ", 2)
		if cur == nil {
			return false
		}
		return numberOf(cur[resolveName(parts[0], names)]) == numberOf(values[parts[1]])
	}
	panic(fmt.Sprintf("fake: unsupported condition %q", cond))
}

func applyUpdate(cur map[string]types.AttributeValue, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	switch {
	case strings.HasPrefix(expr, "SET "):
		for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
			lhs, rhs, _ := strings.Cut(clause, " = ")
			name := resolveName(lhs, names)
			if a, b, ok := strings.Cut(rhs, " + "); ok {
				sum := numberOf(cur[resolveName(a, names)]) + numberOf(values[b])
				cur[name] = &types.AttributeValueMemberN{Value: strconv.FormatInt(sum, 10)}
				continue
			}
			cur[name] = values[rhs]
		}
	case strings.HasPrefix(expr, "ADD "):
		for _, clause := range strings.Split(strings.TrimPrefix(expr, "ADD "), ", ") {
			fields := strings.Fields(clause)
			name := resolveName(fields[0], names)
			sum := numberOf(cur[name]) + numberOf(values[fields[1]])
			cur[name] = &types.AttributeValueMemberN{Value: strconv.FormatInt(sum, 10)}
		}
	default:
		return fmt.Errorf("fake: unsupported update expression %q", expr)
	}
	return nil
}

func resolveName(s string, names map[string]string) string {
	if n, ok := names[s]; ok {
		return n
	}
	return s
}

func numberOf(v types.AttributeValue) int64 {
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	i, _ := strconv.ParseInt(n.Value, 10, 64)
	return i
}

func pkValue(item map[string]types.AttributeValue) string {
	if v, ok := item["pk"].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
