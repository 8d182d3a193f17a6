package compute

import "fmt"

// numeraiTriggerAccount is Numerai's AWS account, allowed to assume the
// Lambda execution role so the webhook can invoke the function.
const numeraiTriggerAccount = "074996771758"

const codebuildAssumeRolePolicy = `{
    "Version": "2012-10-17",
    "Statement": [
        {
            "Effect": "Allow",
            "Principal": {
                "Service": "codebuild.amazonaws.com"
            },
            "Action": "sts:AssumeRole"
        }
    ]
}`

func codebuildPolicyDocument(accountID, modelID, projectName, region string) string {
	return fmt.Sprintf(`{
    "Version": "2012-10-17",
    "Statement": [
        {
            "Effect": "Allow",
            "Action": [
                "codebuild:UpdateProjectVisibility",
                "codebuild:StopBuild",
                "codebuild:RetryBuild",
                "codebuild:UpdateProject",
                "codebuild:StopBuildBatch",
                "codebuild:CreateReport",
                "codebuild:UpdateReport",
                "codebuild:BatchPutCodeCoverages",
                "codebuild:DeleteBuildBatch",
                "codebuild:RetryBuildBatch",
                "codebuild:CreateProject",
                "codebuild:CreateReportGroup",
                "codebuild:StartBuildBatch",
                "codebuild:StartBuild",
                "codebuild:BatchPutTestCases",
                "logs:CreateLogStream",
                "logs:CreateLogGroup",
                "logs:PutLogEvents",
                "s3:GetObject",
                "s3:GetObjectVersion"
            ],
            "Resource": [
                "arn:aws:s3:::numerai-compute-%[1]s/codebuild-container-%[2]s.zip",
                "arn:aws:s3:::numerai-compute-%[1]s/codebuild-container-%[2]s.zip/*",
                "arn:aws:codebuild:%[4]s:%[1]s:build/%[3]s",
                "arn:aws:codebuild:%[4]s:%[1]s:build/%[3]s:*",
                "arn:aws:logs:%[4]s:%[1]s:log-group:/aws/codebuild/%[3]s",
                "arn:aws:logs:%[4]s:%[1]s:log-group:/aws/codebuild/%[3]s:*"
            ]
        },
        {
            "Effect": "Allow",
            "Resource": [
                "arn:aws:s3:::numerai-compute-%[1]s"
            ],
            "Action": [
                "s3:ListBucket",
                "s3:GetBucketAcl",
                "s3:GetBucketLocation"
            ]
        },
        {
            "Effect": "Allow",
            "Action": [
                "ecr:*"
            ],
            "Resource": "*"
        },
        {
            "Effect": "Allow",
            "Action": [
                "lambda:*"
            ],
            "Resource": "*"
        },
        {
            "Effect": "Allow",
            "Action": [
                "sts:*"
            ],
            "Resource": "*"
        }
    ]
}`, accountID, modelID, projectName, region)
}

func lambdaAssumeRolePolicy(externalID string) string {
	return fmt.Sprintf(`{
    "Version": "2012-10-17",
    "Statement": [
        {
            "Effect": "Allow",
            "Principal": {
                "AWS": "arn:aws:iam::%s:root"
            },
            "Action": "sts:AssumeRole",
            "Condition": {
                "StringEquals": {
                    "sts:ExternalId": "%s"
                }
            }
        },
        {
            "Effect": "Allow",
            "Principal": {
                "Service": "lambda.amazonaws.com"
            },
            "Action": "sts:AssumeRole"
        }
    ]
}`, numeraiTriggerAccount, externalID)
}

func lambdaPolicyDocument(accountID, bucket, functionName, region string) string {
	return fmt.Sprintf(`{
    "Version": "2012-10-17",
    "Statement": [
        {
            "Effect": "Allow",
            "Action": [
                "logs:CreateLogStream",
                "logs:PutLogEvents"
            ],
            "Resource": "arn:aws:logs:%[4]s:%[1]s:log-group:/aws/lambda/%[3]s:*"
        },
        {
            "Effect": "Allow",
            "Action": [
                "s3:*",
                "logs:*"
            ],
            "Resource": [
                "arn:aws:logs:%[4]s:%[1]s:*",
                "arn:aws:s3:::%[2]s",
                "arn:aws:s3:::%[2]s/*"
            ]
        },
        {
            "Effect": "Allow",
            "Action": [
                "lambda:*",
                "secretsmanager:*"
            ],
            "Resource": "*"
        }
    ]
}`, accountID, bucket, functionName, region)
}
